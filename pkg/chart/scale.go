package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// linear maps a numeric domain onto a pixel range.
type linear struct {
	d0, d1 float64
	r0, r1 float64
}

func (s linear) At(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// niceTicks returns evenly spaced ticks from lo up to hi using a step drawn
// from {1, 2, 2.5, 5} x 10^k that yields roughly count ticks.
func niceTicks(lo, hi float64, count int) []float64 {
	if hi <= lo || count < 2 {
		return []float64{lo}
	}
	raw := (hi - lo) / float64(count-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := 10 * mag
	for _, m := range []float64{1, 2, 2.5, 5} {
		if raw <= m*mag {
			step = m * mag
			break
		}
	}
	var ticks []float64
	for i := 0; ; i++ {
		v := lo + float64(i)*step
		if v > hi+step*1e-9 {
			break
		}
		ticks = append(ticks, math.Round(v*1e6)/1e6)
	}
	return ticks
}

type point struct{ X, Y float64 }

// monotonePath returns SVG path data for a cubic curve through pts that is
// monotone in y between neighbouring points (Fritsch-Carlson slopes as in
// d3's curveMonotoneX). pts must be sorted by x.
func monotonePath(pts []point) string {
	var b strings.Builder
	switch len(pts) {
	case 0:
		return ""
	case 1:
		fmt.Fprintf(&b, "M%s,%sZ", num(pts[0].X), num(pts[0].Y))
		return b.String()
	case 2:
		fmt.Fprintf(&b, "M%s,%sL%s,%s", num(pts[0].X), num(pts[0].Y), num(pts[1].X), num(pts[1].Y))
		return b.String()
	}

	n := len(pts)
	tangents := make([]float64, n)
	for i := 1; i < n-1; i++ {
		tangents[i] = slope3(pts[i-1], pts[i], pts[i+1])
	}
	tangents[0] = slope2(pts[0], pts[1], tangents[1])
	tangents[n-1] = slope2(pts[n-2], pts[n-1], tangents[n-2])

	fmt.Fprintf(&b, "M%s,%s", num(pts[0].X), num(pts[0].Y))
	for i := 0; i < n-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		dx := (p1.X - p0.X) / 3
		fmt.Fprintf(&b, "C%s,%s,%s,%s,%s,%s",
			num(p0.X+dx), num(p0.Y+dx*tangents[i]),
			num(p1.X-dx), num(p1.Y-dx*tangents[i+1]),
			num(p1.X), num(p1.Y))
	}
	return b.String()
}

func slope3(p0, p1, p2 point) float64 {
	h0, h1 := p1.X-p0.X, p2.X-p1.X
	if h0 == 0 || h1 == 0 {
		return 0
	}
	s0, s1 := (p1.Y-p0.Y)/h0, (p2.Y-p1.Y)/h1
	p := (s0*h1 + s1*h0) / (h0 + h1)
	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) {
		return 0
	}
	return t
}

func slope2(p0, p1 point, t float64) float64 {
	h := p1.X - p0.X
	if h == 0 {
		return t
	}
	return (3*(p1.Y-p0.Y)/h - t) / 2
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// num formats a coordinate with at most three decimals.
func num(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
