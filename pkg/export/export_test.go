package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ratechart/pkg/blob"
	"github.com/matzehuels/ratechart/pkg/chart"
	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/raster"
	"github.com/matzehuels/ratechart/pkg/scene"
)

var scenario = []dataset.Point{
	{Year: 1970, Rate: 4.53},
	{Year: 1983, Rate: 2.06},
	{Year: 2023, Rate: 0.72},
}

func newPanel(t *testing.T, points ...dataset.Point) *chart.Panel {
	t.Helper()
	sel, err := dataset.NewSelection(points...)
	if err != nil {
		t.Fatalf("NewSelection: %v", err)
	}
	return chart.NewPanel(sel, chart.Card())
}

func nativeDecoder(t *testing.T) raster.Decoder {
	t.Helper()
	dec, err := raster.NewNative(nil, nil)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	return dec
}

// capture records every emitted artifact.
type capture struct{ got []*Artifact }

func (c *capture) Emit(_ context.Context, a *Artifact) error {
	c.got = append(c.got, a)
	return nil
}

// solidDecoder resolves immediately with a white bitmap of the export size.
var solidDecoder = raster.DecoderFunc(func(context.Context, *blob.Handle) *raster.Decoding {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return raster.Resolved(raster.ImageSource{Image: img, Density: 1})
})

var rejectDecoder = raster.DecoderFunc(func(context.Context, *blob.Handle) *raster.Decoding {
	return raster.Rejected(fmt.Errorf("broken image"))
})

func TestExportScenario(t *testing.T) {
	em := &capture{}
	e := New(nativeDecoder(t), em, nil)

	out := e.Export(context.Background(), newPanel(t, scenario...))
	if out.Err != nil || out.State != Downloaded {
		t.Fatalf("outcome = %v, %v", out.State, out.Err)
	}
	want := []State{Cloning, StyleInlining, Serializing, Decoding, Drawing, Encoding, Downloaded}
	if fmt.Sprint(out.Trace) != fmt.Sprint(want) {
		t.Errorf("trace = %v, want %v", out.Trace, want)
	}
	if len(em.got) != 1 {
		t.Fatalf("emitted %d artifacts, want 1", len(em.got))
	}
	a := em.got[0]
	if a.Name != "출산율-그래프.png" || a.MIME != "image/png" {
		t.Errorf("artifact = %q %q", a.Name, a.MIME)
	}
	if a.Width != 1600 || a.Height != 1200 {
		t.Errorf("artifact size = %dx%d", a.Width, a.Height)
	}

	img, err := png.Decode(bytes.NewReader(a.Data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1600 || b.Dy() != 1200 {
		t.Errorf("png bounds = %v", b)
	}
	for _, p := range []image.Point{{0, 0}, {1599, 0}, {1599, 1199}} {
		r, g, b, alpha := img.At(p.X, p.Y).RGBA()
		if r != 0xffff || g != 0xffff || b != 0xffff || alpha != 0xffff {
			t.Errorf("pixel %v = %d %d %d %d, want opaque white", p, r, g, b, alpha)
		}
	}
	if out.Inline.Styled == 0 || out.Inline.Skipped != 0 {
		t.Errorf("inline stats = %+v", out.Inline)
	}

	if s := e.Blobs.Stats(); s.Created != 1 || s.Released != 1 || s.Live != 0 {
		t.Errorf("blob stats = %+v", s)
	}
}

func TestExportDoesNotMutateLiveScene(t *testing.T) {
	p := newPanel(t, scenario...)
	before := string(scene.Marshal(p.Scene().Root))

	out := New(solidDecoder, &capture{}, nil).Export(context.Background(), p)
	if out.State != Downloaded {
		t.Fatalf("state = %v, err = %v", out.State, out.Err)
	}
	if after := string(scene.Marshal(p.Scene().Root)); after != before {
		t.Error("export changed the live scene")
	}
}

func TestExportEmptyIsNoop(t *testing.T) {
	em := &capture{}
	e := New(solidDecoder, em, nil)

	for name, src := range map[string]Source{
		"nil source":  nil,
		"empty panel": newPanel(t),
	} {
		t.Run(name, func(t *testing.T) {
			out := e.Export(context.Background(), src)
			if !out.Skipped || out.State != Idle || out.Err != nil || len(out.Trace) != 0 {
				t.Errorf("outcome = %+v", out)
			}
		})
	}
	if len(em.got) != 0 {
		t.Errorf("emitted %d artifacts", len(em.got))
	}
	if s := e.Blobs.Stats(); s.Created != 0 {
		t.Errorf("blob stats = %+v, want nothing allocated", s)
	}
}

func TestExportDeterministic(t *testing.T) {
	em := &capture{}
	e := New(nativeDecoder(t), em, nil)
	p := newPanel(t, scenario...)

	for i := 0; i < 2; i++ {
		if out := e.Export(context.Background(), p); out.State != Downloaded {
			t.Fatalf("run %d: %v", i, out.Err)
		}
	}
	if !bytes.Equal(em.got[0].Data, em.got[1].Data) {
		t.Error("repeated exports differ")
	}
}

func TestExportFailures(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		decoder   raster.Decoder
		surface   SurfaceFunc
		emitter   Emitter
		code      errors.Code
		lastState State
		handles   int64
	}{
		{
			name:      "decode rejected",
			decoder:   rejectDecoder,
			code:      errors.ErrCodeDecode,
			lastState: Decoding,
			handles:   1,
		},
		{
			name: "decoder panics",
			decoder: raster.DecoderFunc(func(context.Context, *blob.Handle) *raster.Decoding {
				panic("decoder exploded")
			}),
			code:      errors.ErrCodeInternal,
			lastState: Decoding,
			handles:   1,
		},
		{
			name:    "surface unavailable",
			decoder: solidDecoder,
			surface: func(float64, float64, float64) (*raster.Surface, error) {
				return nil, fmt.Errorf("out of memory")
			},
			code:      errors.ErrCodeSurfaceUnavailable,
			lastState: Serializing,
			handles:   0,
		},
		{
			name:      "canceled before drawing",
			ctx:       canceled,
			decoder:   solidDecoder,
			code:      errors.ErrCodeCanceled,
			lastState: Decoding,
			handles:   1,
		},
		{
			name:    "emit refused",
			decoder: solidDecoder,
			emitter: EmitterFunc(func(context.Context, *Artifact) error {
				return fmt.Errorf("download blocked")
			}),
			code:      errors.ErrCodeEmit,
			lastState: Encoding,
			handles:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := tt.emitter
			if em == nil {
				em = &capture{}
			}
			e := New(tt.decoder, em, nil)
			if tt.surface != nil {
				e.Surface = tt.surface
			}
			ctx := tt.ctx
			if ctx == nil {
				ctx = context.Background()
			}

			out := e.Export(ctx, newPanel(t, scenario...))
			if out.State != Failed {
				t.Fatalf("state = %v, want failed", out.State)
			}
			if !errors.Is(out.Err, tt.code) {
				t.Errorf("err = %v, want code %s", out.Err, tt.code)
			}
			if out.Artifact != nil {
				t.Error("failed run produced an artifact")
			}
			if n := len(out.Trace); n < 2 || out.Trace[n-2] != tt.lastState || out.Trace[n-1] != Failed {
				t.Errorf("trace = %v, want ... %v failed", out.Trace, tt.lastState)
			}
			s := e.Blobs.Stats()
			if s.Created != tt.handles || s.Released != tt.handles || s.Live != 0 {
				t.Errorf("blob stats = %+v, want %d created and released", s, tt.handles)
			}
		})
	}
}

func TestExportReleasesAcrossRepeatedRuns(t *testing.T) {
	e := New(solidDecoder, &capture{}, nil)
	p := newPanel(t, scenario...)
	for i := 0; i < 6; i++ {
		run := e
		if i%2 == 1 {
			run = &Exporter{}
			*run = *e
			run.Decoder = rejectDecoder
		}
		run.Export(context.Background(), p)
	}
	if s := e.Blobs.Stats(); s.Created != 6 || s.Released != 6 || s.Live != 0 {
		t.Errorf("blob stats = %+v", s)
	}
}

func TestExportIDsAreUnique(t *testing.T) {
	e := New(solidDecoder, &capture{}, nil)
	p := newPanel(t, scenario...)
	a, b := e.Export(context.Background(), p), e.Export(context.Background(), p)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids %q and %q", a.ID, b.ID)
	}
}

func TestInlineRendersWithoutStylesheet(t *testing.T) {
	c, err := chart.Build(scenario, chart.Elegant(), chart.WithActive(1983))
	if err != nil {
		t.Fatal(err)
	}
	live := c.Scene
	target := live.Clone()
	stats := Inliner{}.Inline(target)
	if stats.Skipped != 0 {
		t.Errorf("skipped %d elements", stats.Skipped)
	}

	// Effective styles in the live document.
	var want []scene.Style
	liveRes := scene.NewResolver(live)
	live.Root.Walk(func(n *scene.Node) bool {
		st, err := liveRes.Resolve(n)
		if err != nil {
			t.Fatalf("resolve live <%s>: %v", n.Tag, err)
		}
		want = append(want, st)
		return true
	})

	// The inlined copy must compute the same without any stylesheet.
	bare := scene.New(target.Root, nil, target.Width, target.Height)
	bareRes := scene.NewResolver(bare)
	i := 0
	target.Root.Walk(func(n *scene.Node) bool {
		st, err := bareRes.Resolve(n)
		if err != nil {
			t.Fatalf("resolve inlined <%s>: %v", n.Tag, err)
		}
		if !st.Equal(want[i]) {
			t.Errorf("element %d <%s> style=%q computes differently without the stylesheet", i, n.Tag, n.Attrs)
		}
		if v, ok := n.Get("style"); ok {
			if strings.TrimSpace(v) == "" {
				t.Errorf("element %d <%s> has an empty style attribute", i, n.Tag)
			}
			if strings.Contains(v, "initial") || strings.Contains(v, "inherit") {
				t.Errorf("element %d <%s> style %q keeps a cascade keyword", i, n.Tag, v)
			}
		}
		i++
		return true
	})
	if i != len(want) {
		t.Errorf("inlined tree has %d elements, live has %d", i, len(want))
	}
}

func TestInlineSkipsUnresolvable(t *testing.T) {
	root := scene.El("svg").Append(
		scene.El("g", scene.A("class", "a"), scene.A("style", "fill:")).Append(scene.El("rect")),
	)
	target := scene.New(root, scene.MustParseStylesheet(".a { stroke: red; }"), 10, 10)
	stats := Inliner{}.Inline(target)
	if stats.Skipped != 1 {
		t.Errorf("stats = %+v, want one skipped", stats)
	}
	rect := root.Children[0].Children[0]
	if v, _ := rect.Get("style"); v != "stroke: rgb(255, 0, 0);" {
		t.Errorf("rect style = %q", v)
	}
}

func TestInlineDeclarations(t *testing.T) {
	root := scene.El("svg").Append(
		scene.El("g", scene.A("class", "axis")).Append(
			scene.El("text", scene.A("font-size", "12")),
			scene.El("text", scene.A("class", "big"), scene.A("font-size", "12")),
			scene.El("text", scene.A("class", "reset")),
		),
		scene.El("rect"),
		scene.El("rect", scene.A("class", "plain"), scene.A("fill", "red")),
	)
	sheet := scene.MustParseStylesheet(`.axis { fill: #666; } .big { font-size: 20px; } .reset { fill: black; } .plain { fill: black; }`)
	Inliner{}.Inline(scene.New(root, sheet, 10, 10))

	g := root.Children[0]
	tests := []struct {
		name string
		node *scene.Node
		want string
	}{
		{"initial root", root, ""},
		{"styled group", g, "fill: rgb(102, 102, 102);"},
		{"inherited paint", g.Children[0], "fill: rgb(102, 102, 102); font-size: 12px;"},
		{"stylesheet override", g.Children[1], "fill: rgb(102, 102, 102); font-size: 20px;"},
		{"reset to initial under styled parent", g.Children[2], "fill: rgb(0, 0, 0);"},
		{"unstyled", root.Children[1], ""},
		{"presentation attribute overridden", root.Children[2], "fill: rgb(0, 0, 0);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.node.Get("style")
			if got != tt.want {
				t.Errorf("<%s> style = %q, want %q", tt.node.Tag, got, tt.want)
			}
			if tt.want == "" && ok {
				t.Errorf("<%s> keeps an empty style attribute", tt.node.Tag)
			}
		})
	}
}

func TestInlineDeclaresEveryStyledElement(t *testing.T) {
	for _, theme := range []chart.Theme{chart.Card(), chart.Elegant()} {
		c, err := chart.Build(scenario, theme, chart.WithActive(1983))
		if err != nil {
			t.Fatal(err)
		}
		target := c.Scene.Clone()
		Inliner{}.Inline(target)

		liveRes := scene.NewResolver(c.Scene)
		var want []scene.Style
		c.Scene.Root.Walk(func(n *scene.Node) bool {
			st, err := liveRes.Resolve(n)
			if err != nil {
				t.Fatalf("resolve <%s>: %v", n.Tag, err)
			}
			want = append(want, st)
			return true
		})

		initial := scene.InitialStyle()
		styled, missing, i := 0, 0, 0
		target.Root.Walk(func(n *scene.Node) bool {
			if !want[i].Equal(initial) {
				styled++
				if _, ok := n.Get("style"); !ok {
					missing++
					if missing <= 3 {
						t.Errorf("%s: <%s %v> has a non-initial style but no declaration", theme.Name, n.Tag, n.Attrs)
					}
				}
			}
			i++
			return true
		})
		if styled == 0 {
			t.Errorf("%s: no element has a non-initial style", theme.Name)
		}
		if missing > 0 {
			t.Errorf("%s: %d of %d styled elements lack a declaration", theme.Name, missing, styled)
		}
	}
}

func TestSerialize(t *testing.T) {
	c, err := chart.Build(scenario, chart.Card())
	if err != nil {
		t.Fatal(err)
	}
	target := c.Scene.Clone()
	doc, err := Serializer{}.Serialize(target)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	root, err := scene.Parse(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for name, want := range map[string]string{
		"xmlns":       scene.SVGNamespace,
		"xmlns:xlink": XLinkNamespace,
		"width":       "800",
		"height":      "600",
		"viewBox":     "0 0 800 600",
	} {
		if got, _ := root.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	bg := root.Children[0]
	if bg.Tag != "rect" {
		t.Fatalf("first child is <%s>, want background rect", bg.Tag)
	}
	if w, _ := bg.Get("width"); w != "800" {
		t.Errorf("background width = %q", w)
	}
	if !strings.Contains(string(doc), "연도") {
		t.Error("axis label lost in serialization")
	}

	again, _ := Serializer{}.Serialize(c.Scene.Clone())
	if !bytes.Equal(doc, again) {
		t.Error("serialization is not deterministic")
	}

	if _, err := (Serializer{}).Serialize(scene.New(scene.El("g"), nil, 1, 1)); err == nil {
		t.Error("non-svg root accepted")
	}
}

func TestFileEmitter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var written string
	em := FileEmitter{Dir: dir, Path: func(p string) { written = p }}
	a := &Artifact{Name: Filename, MIME: MIMEType, Data: []byte("png")}
	if err := em.Emit(context.Background(), a); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if written != filepath.Join(dir, Filename) {
		t.Errorf("path = %q", written)
	}
	data, err := os.ReadFile(written)
	if err != nil || string(data) != "png" {
		t.Errorf("file = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the artifact", len(entries))
	}
}

func TestResponseEmitter(t *testing.T) {
	rec := httptest.NewRecorder()
	a := &Artifact{Name: Filename, MIME: MIMEType, Data: []byte("png")}
	if err := (ResponseEmitter{W: rec}).Emit(context.Background(), a); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	disp := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disp, "attachment;") || !strings.Contains(disp, "filename*=utf-8''") {
		t.Errorf("Content-Disposition = %q", disp)
	}
	if rec.Body.String() != "png" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStateTransitions(t *testing.T) {
	if !canTransition(Idle, Cloning) || !canTransition(Decoding, Failed) {
		t.Error("legal transition rejected")
	}
	if canTransition(Idle, Drawing) || canTransition(Downloaded, Failed) || canTransition(Failed, Failed) {
		t.Error("illegal transition accepted")
	}
	if Decoding.String() != "decoding" || State(99).String() != "unknown" {
		t.Error("state names")
	}
}
