package export

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ratechart/pkg/scene"
)

// InlineStats counts what the inliner did to one target.
type InlineStats struct {
	Styled   int // elements given a style attribute
	Unstyled int // elements that needed no declarations
	Skipped  int // elements whose style could not be resolved
}

// Inliner rewrites cascaded styles as style attributes so that the
// document renders the same without its stylesheet.
type Inliner struct {
	Logger *log.Logger
}

// Inline styles every element of target in place. Every property whose
// effective value differs from its initial value is declared explicitly.
// A property at its initial value is declared only when a stylesheet-less
// renderer would otherwise pick up something else from the inlined parent
// or the element's presentation attributes.
func (in Inliner) Inline(target *scene.Scene) InlineStats {
	var stats InlineStats
	if target == nil || target.Root == nil {
		return stats
	}
	res := scene.NewResolver(target)

	// Effective styles are resolved for the whole tree before any style
	// attribute is rewritten.
	type entry struct {
		style scene.Style
		err   error
	}
	resolved := make(map[*scene.Node]entry)
	target.Root.Walk(func(n *scene.Node) bool {
		st, err := res.Resolve(n)
		resolved[n] = entry{st, err}
		return true
	})

	standalone := make(map[*scene.Node]scene.Style)
	target.Root.Walk(func(n *scene.Node) bool {
		parent := scene.InitialStyle()
		if p := n.Parent(); p != nil {
			parent = standalone[p]
		}
		base := scene.Presentation(n, parent)

		e := resolved[n]
		if e.err != nil {
			stats.Skipped++
			standalone[n] = base
			if in.Logger != nil {
				in.Logger.Debug("style not inlined", "element", n.Tag, "err", e.err)
			}
			return true
		}

		decl := declarations(e.style, base)
		if decl == "" {
			n.Remove("style")
			stats.Unstyled++
		} else {
			n.Set("style", decl)
			stats.Styled++
		}
		standalone[n] = e.style
		return true
	})
	return stats
}

// declarations renders the properties of style that are not at their
// initial value, plus those at their initial value that base disagrees with.
func declarations(style, base scene.Style) string {
	var b strings.Builder
	style.Each(func(name, value string) {
		if value == "" || value == "initial" || value == "inherit" {
			return
		}
		if value == scene.Initial(name) && value == base.Get(name) {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte(';')
	})
	return b.String()
}
