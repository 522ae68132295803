package raster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
)

// parseTransform applies an SVG transform list to m. Functions are applied
// left to right, so the rightmost one acts on coordinates first.
func parseTransform(m rasterx.Matrix2D, v string) (rasterx.Matrix2D, error) {
	for _, part := range strings.Split(v, ")") {
		part = strings.TrimSpace(strings.TrimLeft(part, " ,"))
		if part == "" {
			continue
		}
		name, args, ok := strings.Cut(part, "(")
		if !ok {
			return m, fmt.Errorf("malformed transform %q", v)
		}
		p, err := parseNumbers(args)
		if err != nil {
			return m, fmt.Errorf("malformed transform %q: %w", v, err)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case name == "translate" && len(p) == 1:
			m = m.Translate(p[0], 0)
		case name == "translate" && len(p) == 2:
			m = m.Translate(p[0], p[1])
		case name == "scale" && len(p) == 1:
			m = m.Scale(p[0], p[0])
		case name == "scale" && len(p) == 2:
			m = m.Scale(p[0], p[1])
		case name == "rotate" && len(p) == 1:
			m = m.Rotate(p[0] * math.Pi / 180)
		case name == "rotate" && len(p) == 3:
			m = m.Translate(p[1], p[2]).Rotate(p[0]*math.Pi/180).Translate(-p[1], -p[2])
		case name == "skewx" && len(p) == 1:
			m = m.SkewX(p[0] * math.Pi / 180)
		case name == "skewy" && len(p) == 1:
			m = m.SkewY(p[0] * math.Pi / 180)
		case name == "matrix" && len(p) == 6:
			m = m.Mult(rasterx.Matrix2D{A: p[0], B: p[1], C: p[2], D: p[3], E: p[4], F: p[5]})
		default:
			return m, fmt.Errorf("unsupported transform %s with %d arguments", name, len(p))
		}
	}
	return m, nil
}

func parseNumbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
