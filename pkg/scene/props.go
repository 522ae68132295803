package scene

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindKeyword valueKind = iota
	kindColor
	kindPaint
	kindLength
	kindNumber
	kindWeight
	kindDash
)

type property struct {
	initial   string
	inherited bool
	kind      valueKind
}

// properties are the style properties a Resolver computes. Everything else
// in a declaration block is ignored.
var properties = map[string]property{
	"color":             {"rgb(0, 0, 0)", true, kindColor},
	"display":           {"inline", false, kindKeyword},
	"dominant-baseline": {"auto", true, kindKeyword},
	"fill":              {"rgb(0, 0, 0)", true, kindPaint},
	"fill-opacity":      {"1", true, kindNumber},
	"font-family":       {"sans-serif", true, kindKeyword},
	"font-size":         {"16px", true, kindLength},
	"font-style":        {"normal", true, kindKeyword},
	"font-weight":       {"400", true, kindWeight},
	"opacity":           {"1", false, kindNumber},
	"stroke":            {"none", true, kindPaint},
	"stroke-dasharray":  {"none", true, kindDash},
	"stroke-dashoffset": {"0px", true, kindLength},
	"stroke-linecap":    {"butt", true, kindKeyword},
	"stroke-linejoin":   {"miter", true, kindKeyword},
	"stroke-opacity":    {"1", true, kindNumber},
	"stroke-width":      {"1px", true, kindLength},
	"text-anchor":       {"start", true, kindKeyword},
	"visibility":        {"visible", true, kindKeyword},
}

// propertyOrder is the canonical order used when styles are serialised.
var propertyOrder = func() []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// Properties returns the tracked property names in canonical (sorted) order.
func Properties() []string {
	return append([]string(nil), propertyOrder...)
}

// Tracked reports whether name is a property the resolver computes.
func Tracked(name string) bool {
	_, ok := properties[name]
	return ok
}

// Inherited reports whether a tracked property inherits by default.
func Inherited(name string) bool {
	return properties[name].inherited
}

// Initial returns the initial computed value of a tracked property.
func Initial(name string) string {
	return properties[name].initial
}

// Style is a fully computed style: a value for every tracked property plus
// the custom properties in scope.
type Style struct {
	values map[string]string
	custom map[string]string
}

// InitialStyle returns the style of an element with no ancestors and no
// matching declarations.
func InitialStyle() Style {
	s := Style{values: make(map[string]string, len(properties)), custom: map[string]string{}}
	for name, p := range properties {
		s.values[name] = p.initial
	}
	return s
}

// Get returns the computed value of a tracked property.
func (s Style) Get(name string) string { return s.values[name] }

// Custom returns the computed value of a custom property such as --primary.
func (s Style) Custom(name string) (string, bool) {
	v, ok := s.custom[name]
	return v, ok
}

// Each calls fn for every tracked property in canonical order.
func (s Style) Each(fn func(name, value string)) {
	for _, name := range propertyOrder {
		fn(name, s.values[name])
	}
}

// Equal reports whether two styles agree on every tracked property.
func (s Style) Equal(o Style) bool {
	for _, name := range propertyOrder {
		if s.values[name] != o.values[name] {
			return false
		}
	}
	return true
}

// Number returns a numeric property value with any px suffix removed.
func (s Style) Number(name string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSuffix(s.values[name], "px"), 64)
	return f
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
}
