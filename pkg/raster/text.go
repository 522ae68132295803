package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/ratechart/pkg/fonts"
)

// textRun is one <text> element in document coordinates.
type textRun struct {
	text   string
	x, y   float64
	anchor string
	size   float64
	weight int
	fill   color.NRGBA
	m      rasterx.Matrix2D
}

// draw renders the run through m, which maps text coordinates to device
// pixels. Rotations are snapped to the nearest quarter turn.
func (t textRun) draw(dst *image.RGBA, m rasterx.Matrix2D, fs *fonts.Set) error {
	s := math.Hypot(m.A, m.B)
	if s == 0 || t.size <= 0 || t.fill.A == 0 {
		return nil
	}
	face, err := fs.Face(t.size*s, t.weight)
	if err != nil {
		return err
	}
	defer face.Close()

	adv := font.MeasureString(face, t.text)
	metrics := face.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
	const pad = 1
	mask := image.NewAlpha(image.Rect(0, 0, adv.Ceil()+2*pad, ascent+descent+2*pad))
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face, Dot: fixed.P(pad, pad+ascent)}
	d.DrawString(t.text)

	var shift float64
	switch t.anchor {
	case "middle":
		shift = float64(adv) / 64 / 2
	case "end":
		shift = float64(adv) / 64
	}
	ox, oy := m.Transform(t.x-shift/s, t.y)
	quarter := int(math.Round(math.Atan2(m.B, m.A)/(math.Pi/2))) & 3
	rot := rotateMask(mask, quarter, image.Pt(pad, pad+ascent))

	r := rot.Bounds().Add(image.Pt(int(math.Round(ox)), int(math.Round(oy))))
	draw.DrawMask(dst, r, image.NewUniform(t.fill), image.Point{}, rot, rot.Bounds().Min, draw.Over)
	return nil
}

// rotateMask turns src by quarter * 90 degrees about origin. The result is
// positioned so that origin maps to (0, 0).
func rotateMask(src *image.Alpha, quarter int, origin image.Point) *image.Alpha {
	b := src.Bounds()
	place := func(x, y int) image.Point {
		a, c := x-origin.X, y-origin.Y
		switch quarter {
		case 1:
			return image.Pt(-c-1, a)
		case 2:
			return image.Pt(-a-1, -c-1)
		case 3:
			return image.Pt(c, -a-1)
		}
		return image.Pt(a, c)
	}
	p0, p1 := place(b.Min.X, b.Min.Y), place(b.Max.X-1, b.Max.Y-1)
	bounds := image.Rectangle{Min: p0, Max: p1}.Canon()
	bounds.Max = bounds.Max.Add(image.Pt(1, 1))

	dst := image.NewAlpha(bounds)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := place(x, y)
			dst.SetAlpha(p.X, p.Y, src.AlphaAt(x, y))
		}
	}
	return dst
}
