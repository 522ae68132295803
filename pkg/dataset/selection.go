package dataset

import (
	"slices"
	"sync"

	"github.com/matzehuels/ratechart/pkg/errors"
)

// Selection is the user's ordered set of points with unique years.
// Points keep insertion order; the chart sorts them itself.
//
// A Selection is safe for concurrent use.
type Selection struct {
	mu     sync.RWMutex
	points []Point
}

// NewSelection returns a selection seeded with points. Points that fail
// [Selection.Put] are reported in the returned error and skipped.
func NewSelection(points ...Point) (*Selection, error) {
	s := &Selection{}
	for _, p := range points {
		if err := s.Put(p); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Add looks year up in the built-in table and appends it.
//
// The year must lie in [MinYear, MaxYear], must not already be selected and
// must have a table entry.
func (s *Selection) Add(year int) (Point, error) {
	if err := errors.ValidateYear(year); err != nil {
		return Point{}, err
	}
	p, ok := Lookup(year)
	if !ok {
		return Point{}, errors.New(errors.ErrCodeUnknownYear, "해당 연도의 데이터를 찾을 수 없습니다 (%d)", year)
	}
	return p, s.Put(p)
}

// Put appends an explicit point after checking the year gate and uniqueness.
func (s *Selection) Put(p Point) error {
	if err := errors.ValidateYear(p.Year); err != nil {
		return err
	}
	if err := errors.ValidateRate(p.Rate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.Year) >= 0 {
		return errors.New(errors.ErrCodeDuplicateYear, "이미 추가된 연도입니다 (%d)", p.Year)
	}
	s.points = append(s.points, p)
	return nil
}

// Remove drops year from the selection. It reports whether year was present.
func (s *Selection) Remove(year int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(year)
	if i < 0 {
		return false
	}
	s.points = slices.Delete(s.points, i, i+1)
	return true
}

// Clear removes every point.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.points = nil
	s.mu.Unlock()
}

// Points returns a copy of the selected points in insertion order.
func (s *Selection) Points() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.points)
}

// Len returns the number of selected points.
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Has reports whether year is selected.
func (s *Selection) Has(year int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(year) >= 0
}

func (s *Selection) indexLocked(year int) int {
	return slices.IndexFunc(s.points, func(p Point) bool { return p.Year == year })
}
