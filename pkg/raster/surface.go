package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/math/f64"
)

// MaxDimension bounds each side of a surface in device pixels.
const MaxDimension = 16384

// Surface is an offscreen pixel buffer with a surface-level scale
// transform.
type Surface struct {
	img           *image.RGBA
	width, height float64
	scale         float64
}

// NewSurface allocates a surface of width x height logical pixels at the
// given scale. The device size is rounded to whole pixels.
func NewSurface(width, height, scale float64) (*Surface, error) {
	if width <= 0 || height <= 0 || scale <= 0 ||
		math.IsNaN(width+height+scale) || math.IsInf(width+height+scale, 0) {
		return nil, fmt.Errorf("invalid surface %vx%v at scale %v", width, height, scale)
	}
	dw, dh := int(math.Round(width*scale)), int(math.Round(height*scale))
	if dw > MaxDimension || dh > MaxDimension {
		return nil, fmt.Errorf("surface %dx%d exceeds %d pixels per side", dw, dh, MaxDimension)
	}
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, dw, dh)),
		width:  width,
		height: height,
		scale:  scale,
	}, nil
}

// Size returns the logical size.
func (s *Surface) Size() (width, height float64) { return s.width, s.height }

// Scale returns the logical-to-device scale factor.
func (s *Surface) Scale() float64 { return s.scale }

// Bounds returns the device pixel bounds.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Image returns the backing pixel buffer.
func (s *Surface) Image() *image.RGBA { return s.img }

// Fill paints the whole surface with c.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// DrawSource draws src into the logical rectangle (x, y, w, h).
func (s *Surface) DrawSource(src Source, x, y, w, h float64) error {
	sw, sh := src.Size()
	if sw <= 0 || sh <= 0 {
		return fmt.Errorf("source has no size")
	}
	m := f64.Aff3{
		s.scale * w / sw, 0, s.scale * x,
		0, s.scale * h / sh, s.scale * y,
	}
	return src.Draw(s.img, m)
}

// Opaque reports whether every pixel is fully opaque.
func (s *Surface) Opaque() bool { return s.img.Opaque() }
