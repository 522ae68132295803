package raster

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Source is a decoded image that can be drawn through an affine transform.
// Vector sources are rasterised at draw time, so scaling never resamples
// pixels.
type Source interface {
	// Size returns the natural size in logical pixels.
	Size() (width, height float64)

	// Draw paints the source onto dst. m maps source logical coordinates
	// to dst pixels.
	Draw(dst *image.RGBA, m f64.Aff3) error
}

// ImageSource adapts a bitmap. Density is the number of bitmap pixels per
// logical pixel.
type ImageSource struct {
	Image   image.Image
	Density float64
}

// Size implements Source.
func (s ImageSource) Size() (float64, float64) {
	d := s.Density
	if d <= 0 {
		d = 1
	}
	b := s.Image.Bounds()
	return float64(b.Dx()) / d, float64(b.Dy()) / d
}

// Draw implements Source. A pure translation by whole pixels is copied;
// anything else is resampled with Catmull-Rom.
func (s ImageSource) Draw(dst *image.RGBA, m f64.Aff3) error {
	d := s.Density
	if d <= 0 {
		d = 1
	}
	b := s.Image.Bounds()
	// Compose logical->device with bitmap->logical.
	am := f64.Aff3{
		m[0] / d, m[1] / d, m[2] - (m[0]*float64(b.Min.X)+m[1]*float64(b.Min.Y))/d,
		m[3] / d, m[4] / d, m[5] - (m[3]*float64(b.Min.X)+m[4]*float64(b.Min.Y))/d,
	}
	if am[0] == 1 && am[1] == 0 && am[3] == 0 && am[4] == 1 && am[2] == float64(int(am[2])) && am[5] == float64(int(am[5])) {
		r := image.Rect(int(am[2]), int(am[5]), int(am[2])+b.Dx(), int(am[5])+b.Dy())
		draw.Draw(dst, r, s.Image, b.Min, draw.Over)
		return nil
	}
	xdraw.CatmullRom.Transform(dst, am, s.Image, b, xdraw.Over, nil)
	return nil
}
