// Package export turns a live chart scene into a downloadable PNG.
//
// The pipeline runs in fixed order, each step owned by one component:
//
//	live scene -> clone -> [Inliner] -> [Serializer] -> raster.Decoder -> draw -> [Encoder] -> [Emitter]
//
// [Exporter] sequences the steps as a state machine (see [State]) and owns
// the transient resources of one invocation: the export target, the
// serialized document, the raster surface and the blob handle used to
// decode the document. The handle is released exactly once on every exit
// path.
//
// Export never returns an error. The result of a run is an [Outcome] whose
// Err carries a coded error from pkg/errors when the run failed:
//
//	outcome := exporter.Export(ctx, panel)
//	switch {
//	case outcome.Skipped:
//	    // nothing to export
//	case outcome.Err != nil:
//	    log.Warn("export failed", "code", errors.GetCode(outcome.Err))
//	}
package export
