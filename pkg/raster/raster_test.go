package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/srwiley/rasterx"

	"github.com/matzehuels/ratechart/pkg/blob"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50" viewBox="0 0 100 50">
  <style>.bar { fill: rgb(255, 0, 0); }</style>
  <rect width="100" height="50" fill="white"/>
  <g opacity="0.5">
    <rect class="bar" x="10" y="10" width="20" height="20"/>
  </g>
  <rect x="60" y="10" width="20" height="20" style="fill: blue; display: none"/>
  <text x="50" y="45" font-size="10" text-anchor="middle">1983</text>
</svg>`

func TestNewSurface(t *testing.T) {
	s, err := NewSurface(800, 600, 2)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	if b := s.Bounds(); b.Dx() != 1600 || b.Dy() != 1200 {
		t.Errorf("bounds = %v, want 1600x1200", b)
	}
	if w, h := s.Size(); w != 800 || h != 600 {
		t.Errorf("size = %vx%v", w, h)
	}

	for _, tt := range []struct {
		name          string
		w, h, scale   float64
	}{
		{"zero width", 0, 600, 2},
		{"negative scale", 800, 600, -1},
		{"nan", math.NaN(), 600, 2},
		{"too large", 800, 600, 100},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSurface(tt.w, tt.h, tt.scale); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodingSettlesOnce(t *testing.T) {
	d := Pending()
	if d.Settled() {
		t.Fatal("new decoding is settled")
	}
	src := ImageSource{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	if !d.Resolve(src) {
		t.Fatal("first Resolve did not settle")
	}
	if d.Reject(errors.New("late")) {
		t.Error("Reject after Resolve settled again")
	}
	got, err := d.Wait()
	if err != nil || got == nil {
		t.Errorf("Wait = %v, %v", got, err)
	}

	r := Rejected(nil)
	if _, err := r.Wait(); err == nil {
		t.Error("Rejected(nil) has no error")
	}
	if _, err := Resolved(nil).Wait(); err == nil {
		t.Error("Resolved(nil) should reject")
	}
}

func TestAsyncRecoversPanic(t *testing.T) {
	d := async(func() (Source, error) { panic("boom") })
	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("decoding never settled")
	}
	_, err := d.Wait()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v", err)
	}
}

func TestImageSourceDraw(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	s, _ := NewSurface(4, 4, 2)
	if err := s.DrawSource(ImageSource{Image: src, Density: 1}, 0, 0, 4, 4); err != nil {
		t.Fatalf("DrawSource: %v", err)
	}
	if !s.Opaque() {
		t.Error("scaled bitmap left transparent pixels")
	}

	s, _ = NewSurface(8, 8, 1)
	if err := s.DrawSource(ImageSource{Image: src, Density: 1}, 2, 2, 4, 4); err != nil {
		t.Fatalf("DrawSource: %v", err)
	}
	if a := s.Image().RGBAAt(3, 3).A; a != 0xff {
		t.Errorf("inside alpha = %d", a)
	}
	if a := s.Image().RGBAAt(0, 0).A; a != 0 {
		t.Errorf("outside alpha = %d", a)
	}
}

func TestNativeDecode(t *testing.T) {
	dec, err := NewNative(nil, nil)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	reg := blob.NewRegistry("")
	h := reg.Create(context.Background(), []byte(testSVG), "image/svg+xml")
	defer h.Release()

	src, err := dec.Decode(context.Background(), h).Wait()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w, hh := src.Size(); w != 100 || hh != 50 {
		t.Errorf("size = %vx%v", w, hh)
	}

	s, _ := NewSurface(100, 50, 2)
	if err := s.DrawSource(src, 0, 0, 100, 50); err != nil {
		t.Fatalf("draw: %v", err)
	}
	img := s.Image()
	if !s.Opaque() {
		t.Error("background rect did not cover the surface")
	}

	// The class rule and the group opacity combine to a pink square.
	bar := img.RGBAAt(40, 40)
	if bar.R != 255 || bar.G < 120 || bar.G > 135 {
		t.Errorf("bar pixel = %v, want half-transparent red on white", bar)
	}
	// display:none shapes are not drawn.
	if hidden := img.RGBAAt(140, 40); hidden != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("hidden rect drawn: %v", hidden)
	}

	var dark bool
	for y := 70; y < 92 && !dark; y++ {
		for x := 80; x < 120; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Error("text was not drawn")
	}
}

func TestNativeDecodeErrors(t *testing.T) {
	dec, _ := NewNative(nil, nil)
	reg := blob.NewRegistry("")
	for _, tt := range []struct {
		name string
		doc  string
	}{
		{"not xml", "not an svg"},
		{"wrong root", `<html width="10" height="10"/>`},
		{"no size", `<svg/>`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := reg.Create(context.Background(), []byte(tt.doc), "image/svg+xml")
			defer h.Release()
			if _, err := dec.Decode(context.Background(), h).Wait(); err == nil {
				t.Error("expected decode error")
			}
		})
	}

	h := reg.Create(context.Background(), []byte(testSVG), "image/svg+xml")
	h.Release()
	if _, err := dec.Decode(context.Background(), h).Wait(); !errors.Is(err, blob.ErrReleased) {
		t.Errorf("released handle: err = %v", err)
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		in         string
		x, y       float64
		wantX, wantY float64
	}{
		{"translate(10, 20)", 1, 1, 11, 21},
		{"scale(2)", 3, 4, 6, 8},
		{"rotate(-90, 0, 0)", 1, 0, 0, -1},
		{"rotate(-90, 25, 300)", 25, 300, 25, 300},
		{"translate(10) scale(2)", 1, 1, 12, 2},
		{"matrix(1 0 0 1 5 6)", 0, 0, 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := parseTransform(rasterx.Identity, tt.in)
			if err != nil {
				t.Fatalf("parseTransform: %v", err)
			}
			x, y := m.Transform(tt.x, tt.y)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("(%v,%v) -> (%v,%v), want (%v,%v)", tt.x, tt.y, x, y, tt.wantX, tt.wantY)
			}
		})
	}

	for _, bad := range []string{"rotate(1, 2)", "wobble(3)", "translate(a)"} {
		if _, err := parseTransform(rasterx.Identity, bad); err == nil {
			t.Errorf("parseTransform(%q) succeeded", bad)
		}
	}
}

func TestRotateMask(t *testing.T) {
	src := image.NewAlpha(image.Rect(0, 0, 3, 2))
	src.SetAlpha(2, 0, color.Alpha{A: 0xff})

	tests := []struct {
		quarter int
		want    image.Point
		size    image.Point
	}{
		{0, image.Pt(2, 0), image.Pt(3, 2)},
		{1, image.Pt(-1, 2), image.Pt(2, 3)},
		{2, image.Pt(-3, -1), image.Pt(3, 2)},
		{3, image.Pt(0, -3), image.Pt(2, 3)},
	}
	for _, tt := range tests {
		got := rotateMask(src, tt.quarter, image.Point{})
		if got.Bounds().Size() != tt.size {
			t.Errorf("q%d: size = %v, want %v", tt.quarter, got.Bounds().Size(), tt.size)
		}
		if a := got.AlphaAt(tt.want.X, tt.want.Y).A; a != 0xff {
			t.Errorf("q%d: pixel at %v = %d", tt.quarter, tt.want, a)
		}
	}
}

func TestRsvgDecode(t *testing.T) {
	if !RsvgAvailable() {
		t.Skip("rsvg-convert not installed")
	}
	reg := blob.NewRegistry("")
	h := reg.Create(context.Background(), []byte(testSVG), "image/svg+xml")
	defer h.Release()

	src, err := Rsvg{Density: 2}.Decode(context.Background(), h).Wait()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w, hh := src.Size(); w != 100 || hh != 50 {
		t.Errorf("size = %vx%v", w, hh)
	}
}
