package dataset

import (
	"cmp"
	"slices"

	"github.com/matzehuels/ratechart/pkg/errors"
)

// Year bounds of the built-in table and of the year-range gate.
const (
	MinYear = errors.MinYear
	MaxYear = errors.MaxYear
)

// Point is a single (year, rate) observation.
type Point struct {
	Year int     `json:"year" toml:"year"`
	Rate float64 `json:"rate" toml:"rate"`
}

// Sorted returns a copy of points ordered by ascending year.
// The input slice is left untouched.
func Sorted(points []Point) []Point {
	out := slices.Clone(points)
	slices.SortStableFunc(out, func(a, b Point) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}

// MaxRate returns the largest rate in points, or 0 for an empty slice.
func MaxRate(points []Point) float64 {
	var m float64
	for i, p := range points {
		if i == 0 || p.Rate > m {
			m = p.Rate
		}
	}
	return m
}

// YearRange returns the smallest and largest year in points.
// ok is false when points is empty.
func YearRange(points []Point) (lo, hi int, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	lo, hi = points[0].Year, points[0].Year
	for _, p := range points[1:] {
		lo = min(lo, p.Year)
		hi = max(hi, p.Year)
	}
	return lo, hi, true
}
