package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/f64"

	"github.com/matzehuels/ratechart/pkg/blob"
	"github.com/matzehuels/ratechart/pkg/fonts"
	"github.com/matzehuels/ratechart/pkg/scene"
)

// Native decodes SVG documents in-process. Shapes are parsed by oksvg and
// scanned by rasterx; text, which oksvg ignores, is drawn with the fonts in
// Fonts.
type Native struct {
	Fonts  *fonts.Set
	Logger *log.Logger
}

// NewNative returns a native decoder. A nil set falls back to the Go fonts.
func NewNative(fs *fonts.Set, logger *log.Logger) (*Native, error) {
	if fs == nil {
		var err error
		if fs, err = fonts.Default(); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Native{Fonts: fs, Logger: logger}, nil
}

// Decode implements Decoder. The document is read from h before Decode
// returns; parsing runs on a separate goroutine.
func (n *Native) Decode(_ context.Context, h *blob.Handle) *Decoding {
	r, err := h.Open()
	if err != nil {
		return Rejected(err)
	}
	return async(func() (Source, error) { return n.decode(r) })
}

func (n *Native) decode(r io.Reader) (Source, error) {
	root, err := scene.Parse(r)
	if err != nil {
		return nil, err
	}
	if root.Tag != "svg" {
		return nil, fmt.Errorf("root element is <%s>, want <svg>", root.Tag)
	}
	w, h, vb, err := documentSize(root)
	if err != nil {
		return nil, err
	}

	sheet, err := embeddedStyles(root)
	if err != nil {
		n.Logger.Debug("embedded stylesheet ignored", "err", err)
		sheet = nil
	}
	f := &flattener{
		res:    scene.NewResolver(scene.New(root, sheet, w, h)),
		root:   root,
		out:    scene.El("svg", scene.A("viewBox", fmt.Sprintf("%s %s %s %s", ff(vb[0]), ff(vb[1]), ff(vb[2]), ff(vb[3])))),
		logger: n.Logger,
	}
	f.visit(root, rasterx.Identity, 1)

	icon, err := oksvg.ReadIconStream(bytes.NewReader(scene.Marshal(f.out)), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("decode shapes: %w", err)
	}
	return &vectorSource{
		icon:   icon,
		texts:  f.texts,
		width:  w,
		height: h,
		vb:     vb,
		fonts:  n.Fonts,
	}, nil
}

// documentSize reads the intrinsic size and viewBox of an <svg> root.
func documentSize(root *scene.Node) (w, h float64, vb [4]float64, err error) {
	w, _ = parseLength(attr(root, "width"))
	h, _ = parseLength(attr(root, "height"))
	if v, ok := root.Get("viewBox"); ok {
		parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
		if len(parts) == 4 {
			for i, p := range parts {
				vb[i], err = strconv.ParseFloat(p, 64)
				if err != nil {
					return 0, 0, vb, fmt.Errorf("invalid viewBox %q", v)
				}
			}
		}
	}
	if w <= 0 {
		w = vb[2]
	}
	if h <= 0 {
		h = vb[3]
	}
	if vb[2] <= 0 || vb[3] <= 0 {
		vb = [4]float64{0, 0, w, h}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, vb, fmt.Errorf("document has no size")
	}
	return w, h, vb, nil
}

// embeddedStyles joins the text of every <style> element.
func embeddedStyles(root *scene.Node) (*scene.Stylesheet, error) {
	var css strings.Builder
	root.Walk(func(n *scene.Node) bool {
		if n.Tag == "style" {
			css.WriteString(n.Text)
			css.WriteByte('\n')
			return false
		}
		return true
	})
	return scene.ParseStylesheet(css.String())
}

// vectorSource is a parsed document, rasterised on every Draw.
type vectorSource struct {
	icon          *oksvg.SvgIcon
	texts         []textRun
	width, height float64
	vb            [4]float64
	fonts         *fonts.Set
}

func (s *vectorSource) Size() (float64, float64) { return s.width, s.height }

func (s *vectorSource) Draw(dst *image.RGBA, m f64.Aff3) error {
	if m[1] != 0 || m[3] != 0 {
		return fmt.Errorf("native source supports axis-aligned placement only")
	}
	sx := m[0] * s.width / s.vb[2]
	sy := m[4] * s.height / s.vb[3]
	toDevice := rasterx.Identity.Translate(m[2], m[5]).Scale(sx, sy).Translate(-s.vb[0], -s.vb[1])

	b := dst.Bounds()
	s.icon.Transform = toDevice
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	s.icon.Draw(rasterx.NewDasher(b.Dx(), b.Dy(), scanner), 1)

	for _, t := range s.texts {
		if err := t.draw(dst, toDevice.Mult(t.m), s.fonts); err != nil {
			return fmt.Errorf("draw text %q: %w", t.text, err)
		}
	}
	return nil
}

func attr(n *scene.Node, name string) string {
	v, _ := n.Get(name)
	return v
}

func parseLength(v string) (float64, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	return strconv.ParseFloat(v, 64)
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
