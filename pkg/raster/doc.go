// Package raster turns serialized SVG documents into pixels.
//
// The package has three parts:
//
//   - [Surface]: an offscreen RGBA buffer whose pixel size is the logical
//     size times a fixed scale factor. Drawing happens in logical
//     coordinates; the surface applies the scale.
//   - [Decoder] and [Decoding]: decoding is asynchronous. Decode returns
//     immediately with a one-shot [Decoding] that later settles as either
//     resolved (carrying a [Source]) or rejected (carrying an error).
//     Tests drive it synchronously with [Resolved] and [Rejected].
//   - Backends: [Native] decodes with github.com/srwiley/oksvg and draws
//     text with golang.org/x/image fonts; [Rsvg] shells out to
//     rsvg-convert (librsvg).
//
// # Example
//
//	s, _ := raster.NewSurface(800, 600, 2)
//	d := raster.NewNative(fonts).Decode(ctx, handle)
//	src, err := d.Wait()
//	if err == nil {
//	    s.Fill(color.White)
//	    s.DrawSource(src, 0, 0, 800, 600)
//	}
package raster
