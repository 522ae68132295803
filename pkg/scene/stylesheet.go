package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Declaration is a single property: value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule is a style rule with exactly one selector. Grouped selectors in the
// source produce one Rule each.
type Rule struct {
	Selector     Selector
	Declarations []Declaration

	order int
}

// Stylesheet is a parsed document stylesheet. It is immutable after
// parsing and safe for concurrent use.
type Stylesheet struct {
	source string
	rules  []Rule
}

// ParseStylesheet parses CSS text. At-rules are ignored; selectors outside
// the supported subset are an error.
func ParseStylesheet(src string) (*Stylesheet, error) {
	parsed, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse stylesheet: %w", err)
	}
	sheet := &Stylesheet{source: src}
	for _, r := range parsed.Rules {
		if r.Kind == css.AtRule {
			continue
		}
		decls := convertDeclarations(r.Declarations)
		for _, text := range r.Selectors {
			sel, err := ParseSelector(text)
			if err != nil {
				return nil, err
			}
			sheet.rules = append(sheet.rules, Rule{
				Selector:     sel,
				Declarations: decls,
				order:        len(sheet.rules),
			})
		}
	}
	return sheet, nil
}

// MustParseStylesheet is like ParseStylesheet but panics on error. It is
// intended for stylesheets compiled into the program.
func MustParseStylesheet(src string) *Stylesheet {
	s, err := ParseStylesheet(src)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseDeclarations parses the body of a style attribute.
func ParseDeclarations(src string) ([]Declaration, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	// The parser only finishes a declaration at ';' or '}'.
	if !strings.HasSuffix(src, ";") {
		src += ";"
	}
	decls, err := parser.ParseDeclarations(src)
	if err != nil {
		return nil, fmt.Errorf("parse declarations: %w", err)
	}
	out := convertDeclarations(decls)
	for _, d := range out {
		if d.Property == "" || d.Value == "" {
			return nil, fmt.Errorf("parse declarations: malformed declaration in %q", src)
		}
	}
	return out, nil
}

func convertDeclarations(in []*css.Declaration) []Declaration {
	out := make([]Declaration, 0, len(in))
	for _, d := range in {
		out = append(out, Declaration{
			Property:  strings.ToLower(strings.TrimSpace(d.Property)),
			Value:     strings.TrimSpace(d.Value),
			Important: d.Important,
		})
	}
	return out
}

// String returns the CSS source text.
func (s *Stylesheet) String() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Rules returns the parsed rules in source order.
func (s *Stylesheet) Rules() []Rule {
	if s == nil {
		return nil
	}
	return s.rules
}

// Match returns the rules that apply to n, ordered from lowest to highest
// precedence (specificity, then source order).
func (s *Stylesheet) Match(n *Node) []Rule {
	if s == nil {
		return nil
	}
	var out []Rule
	for _, r := range s.rules {
		if r.Selector.Matches(n) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Selector.spec, out[j].Selector.spec
		if a != b {
			return a.Less(b)
		}
		return out[i].order < out[j].order
	})
	return out
}
