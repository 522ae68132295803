package raster

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/ratechart/pkg/scene"
)

var shapeTags = map[string]bool{
	"rect": true, "circle": true, "ellipse": true, "line": true,
	"path": true, "polyline": true, "polygon": true,
}

// skippedTags carry no drawable content of their own.
var skippedTags = map[string]bool{
	"style": true, "script": true, "defs": true, "title": true, "desc": true,
	"metadata": true, "clipPath": true, "mask": true, "filter": true,
	"linearGradient": true, "radialGradient": true, "pattern": true, "symbol": true,
}

var geometryAttrs = map[string]bool{
	"x": true, "y": true, "width": true, "height": true, "rx": true, "ry": true,
	"cx": true, "cy": true, "r": true, "x1": true, "y1": true, "x2": true, "y2": true,
	"d": true, "points": true,
}

// flattener rewrites a styled document into a flat list of shapes with
// absolute paint and opacity, which is the subset oksvg draws faithfully.
// Text elements are collected separately.
type flattener struct {
	res    *scene.Resolver
	root   *scene.Node
	out    *scene.Node
	texts  []textRun
	logger *log.Logger
}

func (f *flattener) visit(n *scene.Node, m rasterx.Matrix2D, opacity float64) {
	if skippedTags[n.Tag] {
		return
	}
	st, err := f.res.Resolve(n)
	if err != nil {
		f.logger.Debug("style ignored", "element", n.Tag, "err", err)
	}
	if st.Get("display") == "none" {
		return
	}
	if t, ok := n.Get("transform"); ok && n != f.root {
		if m, err = parseTransform(m, t); err != nil {
			f.logger.Debug("element skipped", "element", n.Tag, "transform", t, "err", err)
			return
		}
	}
	opacity *= st.Number("opacity")

	switch {
	case n.Tag == "text":
		f.text(n, st, m, opacity)
		return
	case shapeTags[n.Tag]:
		f.shape(n, st, m, opacity)
	}
	for _, c := range n.Children {
		f.visit(c, m, opacity)
	}
}

func (f *flattener) shape(n *scene.Node, st scene.Style, m rasterx.Matrix2D, opacity float64) {
	if st.Get("visibility") != "visible" || opacity <= 0 {
		return
	}
	out := scene.El(n.Tag)
	for _, a := range n.Attrs {
		if geometryAttrs[a.Name] {
			out.Attrs = append(out.Attrs, a)
		}
	}
	if m != rasterx.Identity {
		out.Set("transform", "matrix("+ff(m.A)+","+ff(m.B)+","+ff(m.C)+","+ff(m.D)+","+ff(m.E)+","+ff(m.F)+")")
	}

	if c, ok := paint(st.Get("fill")); ok {
		out.Set("fill", rgb(c))
		out.Set("fill-opacity", ff(alpha(c)*st.Number("fill-opacity")*opacity))
	} else {
		out.Set("fill", "none")
	}
	if c, ok := paint(st.Get("stroke")); ok && st.Number("stroke-width") > 0 {
		out.Set("stroke", rgb(c))
		out.Set("stroke-opacity", ff(alpha(c)*st.Number("stroke-opacity")*opacity))
		out.Set("stroke-width", ff(st.Number("stroke-width")))
		out.Set("stroke-linecap", st.Get("stroke-linecap"))
		out.Set("stroke-linejoin", st.Get("stroke-linejoin"))
		if dash := st.Get("stroke-dasharray"); dash != "none" {
			out.Set("stroke-dasharray", strings.ReplaceAll(dash, "px", ""))
			out.Set("stroke-dashoffset", ff(st.Number("stroke-dashoffset")))
		}
	} else {
		out.Set("stroke", "none")
	}
	f.out.Append(out)
}

func (f *flattener) text(n *scene.Node, st scene.Style, m rasterx.Matrix2D, opacity float64) {
	if st.Get("visibility") != "visible" {
		return
	}
	c, ok := paint(st.Get("fill"))
	if !ok {
		return
	}
	content := textContent(n)
	if content == "" {
		return
	}
	weight, _ := strconv.Atoi(st.Get("font-weight"))
	c.A = uint8(math.Round(float64(c.A) * clamp01(st.Number("fill-opacity")*opacity)))
	f.texts = append(f.texts, textRun{
		text:   content,
		x:      firstNumber(attr(n, "x")),
		y:      firstNumber(attr(n, "y")),
		anchor: st.Get("text-anchor"),
		size:   st.Number("font-size"),
		weight: weight,
		fill:   c,
		m:      m,
	})
}

func textContent(n *scene.Node) string {
	var b strings.Builder
	n.Walk(func(d *scene.Node) bool {
		b.WriteString(d.Text)
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func paint(v string) (color.NRGBA, bool) {
	if v == "" || v == "none" || strings.HasPrefix(v, "url(") {
		return color.NRGBA{}, false
	}
	c, err := scene.ParseColor(v)
	if err != nil || c.A == 0 {
		return color.NRGBA{}, false
	}
	return c, true
}

func rgb(c color.NRGBA) string {
	return "rgb(" + strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B)) + ")"
}

func alpha(c color.NRGBA) float64 { return float64(c.A) / 255 }

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func firstNumber(v string) float64 {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return 0
	}
	f, _ := parseLength(fields[0])
	return f
}
