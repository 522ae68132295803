package export

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ratechart/pkg/blob"
	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/observability"
	"github.com/matzehuels/ratechart/pkg/raster"
	"github.com/matzehuels/ratechart/pkg/scene"
)

// DocumentMIME is the media type of the serialized document handed to the
// decoder.
const DocumentMIME = "image/svg+xml;charset=utf-8"

// Source is what an export reads from, typically a *chart.Panel.
type Source interface {
	Scene() *scene.Scene
	Points() []dataset.Point
}

// SurfaceFunc allocates a raster surface.
type SurfaceFunc func(width, height, scale float64) (*raster.Surface, error)

// Exporter runs export invocations. The zero value is not usable; build
// one with New. An Exporter holds no per-run state and may be shared.
type Exporter struct {
	Inliner    Inliner
	Serializer Serializer
	Decoder    raster.Decoder
	Encoder    Encoder
	Emitter    Emitter
	Blobs      *blob.Registry
	Surface    SurfaceFunc
	Logger     *log.Logger
}

// New returns an exporter that decodes with dec and delivers with em.
func New(dec raster.Decoder, em Emitter, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{
		Inliner: Inliner{Logger: logger},
		Decoder: dec,
		Encoder: PNGEncoder{},
		Emitter: em,
		Blobs:   blob.NewRegistry(""),
		Surface: raster.NewSurface,
		Logger:  logger,
	}
}

// WithEmitter returns a copy of e that delivers with em.
func (e *Exporter) WithEmitter(em Emitter) *Exporter {
	c := *e
	c.Emitter = em
	return &c
}

// Outcome reports one invocation.
type Outcome struct {
	ID string

	// State is Downloaded or Failed for a run, Idle when skipped.
	State State

	// Skipped is set when there was nothing to export. No state
	// transition happened and nothing was allocated.
	Skipped bool

	// Err is a coded error when State is Failed.
	Err error

	// Trace lists the states entered, in order.
	Trace []State

	Artifact *Artifact
	Inline   InlineStats
	Duration time.Duration
}

// Export runs one invocation against src. It never panics and never
// returns an error directly: failures are reported in the Outcome.
func (e *Exporter) Export(ctx context.Context, src Source) Outcome {
	if src == nil {
		e.Logger.Debug("export skipped", "reason", "no source")
		return Outcome{State: Idle, Skipped: true}
	}
	sc, points := src.Scene(), src.Points()
	if sc == nil || sc.Root == nil || len(points) == 0 {
		e.Logger.Debug("export skipped", "reason", "empty chart", "points", len(points))
		return Outcome{State: Idle, Skipped: true}
	}

	r := &run{exporter: e, ctx: ctx, id: uuid.NewString(), start: time.Now(), state: Idle}
	observability.Export().OnExportStart(ctx, r.id, len(points))
	r.exec(sc)
	return r.outcome()
}

// run is the state of a single invocation.
type run struct {
	exporter *Exporter
	ctx      context.Context
	id       string
	start    time.Time

	state State
	trace []State
	err   error

	handle  *blob.Handle
	release sync.Once

	artifact *Artifact
	inline   InlineStats
}

func (r *run) exec(live *scene.Scene) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(errors.New(errors.ErrCodeInternal, "panic while %s: %v", r.state, p))
		}
		r.releaseHandle()
	}()
	e := r.exporter

	r.enter(Cloning)
	target := live.Clone()

	r.enter(StyleInlining)
	r.inline = e.Inliner.Inline(target)

	r.enter(Serializing)
	doc, err := e.Serializer.Serialize(target)
	if err != nil {
		r.fail(errors.Wrap(errors.ErrCodeEncode, err, "serialize export target"))
		return
	}

	surface, err := e.Surface(Width, Height, Scale)
	if err != nil {
		r.fail(errors.Wrap(errors.ErrCodeSurfaceUnavailable, err, "allocate %dx%d surface", Width*Scale, Height*Scale))
		return
	}

	r.handle = e.Blobs.Create(r.ctx, doc, DocumentMIME)
	r.enter(Decoding)
	src, err := e.Decoder.Decode(r.ctx, r.handle).Wait()
	r.releaseHandle()
	if err != nil {
		r.fail(errors.Wrap(errors.ErrCodeDecode, err, "decode serialized chart"))
		return
	}

	if err := r.ctx.Err(); err != nil {
		r.fail(errors.Wrap(errors.ErrCodeCanceled, err, "export canceled"))
		return
	}
	r.enter(Drawing)
	surface.Fill(white)
	if err := surface.DrawSource(src, 0, 0, Width, Height); err != nil {
		r.fail(errors.Wrap(errors.ErrCodeDecode, err, "draw decoded chart"))
		return
	}

	r.enter(Encoding)
	art, err := e.Encoder.Encode(surface)
	if err != nil {
		r.fail(errors.Wrap(errors.ErrCodeEncode, err, "encode surface"))
		return
	}
	if err := e.Emitter.Emit(r.ctx, art); err != nil {
		r.fail(errors.Wrap(errors.ErrCodeEmit, err, "deliver %s", art.Name))
		return
	}
	r.artifact = art
	r.enter(Downloaded)
}

func (r *run) enter(to State) {
	if !canTransition(r.state, to) {
		panic("illegal export transition " + r.state.String() + " -> " + to.String())
	}
	from := r.state
	r.state = to
	r.trace = append(r.trace, to)
	r.exporter.Logger.Debug("export transition", "id", r.id, "from", from, "to", to)
	observability.Export().OnTransition(r.ctx, r.id, from.String(), to.String())
}

func (r *run) fail(err error) {
	if r.state.Terminal() {
		return
	}
	r.err = err
	r.enter(Failed)
}

// releaseHandle frees the decode handle. Only the first call has an
// effect.
func (r *run) releaseHandle() {
	r.release.Do(func() {
		if r.handle != nil {
			r.handle.Release()
		}
	})
}

func (r *run) outcome() Outcome {
	d := time.Since(r.start)
	logger := r.exporter.Logger.With("id", r.id, "state", r.state, "duration", d)
	switch code := errors.GetCode(r.err); {
	case r.err == nil:
		logger.Debug("export complete", "bytes", len(r.artifact.Data))
	case code == errors.ErrCodeEmit || code == errors.ErrCodeInternal:
		logger.Error("export failed", "code", code, "err", r.err)
	default:
		logger.Warn("export failed", "code", code, "err", r.err)
	}
	observability.Export().OnExportComplete(r.ctx, r.id, r.state.String(), d, r.err)
	return Outcome{
		ID:       r.id,
		State:    r.state,
		Err:      r.err,
		Trace:    r.trace,
		Artifact: r.artifact,
		Inline:   r.inline,
		Duration: d,
	}
}
