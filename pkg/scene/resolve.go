package scene

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ErrDetached is returned when a node is not part of the resolver's scene.
var ErrDetached = errors.New("scene: node is not attached to the scene")

const maxVarDepth = 16

// Resolver computes effective styles for the nodes of one scene. Results
// are memoised per node, so a Resolver must not outlive mutations of the
// tree or its attributes. It is safe for concurrent use.
type Resolver struct {
	scene *Scene

	mu   sync.Mutex
	memo map[*Node]resolved
}

type resolved struct {
	style Style
	err   error
}

// NewResolver returns a resolver for s.
func NewResolver(s *Scene) *Resolver {
	return &Resolver{scene: s, memo: make(map[*Node]resolved)}
}

// Resolve returns the computed style of n. A malformed inline style
// attribute yields an error for n only; n's descendants inherit from the
// style n would have without it.
func (r *Resolver) Resolve(n *Node) (Style, error) {
	if !r.scene.Attached(n) {
		return Style{}, ErrDetached
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.resolve(n)
	return res.style, res.err
}

func (r *Resolver) resolve(n *Node) resolved {
	if res, ok := r.memo[n]; ok {
		return res
	}
	parent := InitialStyle()
	if n.parent != nil {
		parent = r.resolve(n.parent).style
	}
	style, err := compute(n, parent, r.scene.Sheet)
	res := resolved{style: style, err: err}
	r.memo[n] = res
	return res
}

// Presentation returns the style a renderer without stylesheet or custom
// property support would compute for n: only presentation attributes
// apply, on top of parent. The style attribute is ignored.
func Presentation(n *Node, parent Style) Style {
	bare := &Node{Tag: n.Tag}
	for _, a := range n.Attrs {
		if _, ok := properties[a.Name]; ok {
			bare.Attrs = append(bare.Attrs, a)
		}
	}
	style, _ := compute(bare, Style{values: parent.values}, nil)
	return style
}

type cascaded struct {
	decl   Declaration
	origin int
	spec   Specificity
	order  int
}

const (
	originPresentation = iota
	originRule
	originInline
	originRuleImportant
	originInlineImportant
)

// compute runs the cascade for n given its parent's computed style.
func compute(n *Node, parent Style, sheet *Stylesheet) (Style, error) {
	var decls []cascaded
	seq := 0
	add := func(d Declaration, origin int, spec Specificity) {
		decls = append(decls, cascaded{decl: d, origin: origin, spec: spec, order: seq})
		seq++
	}

	for _, a := range n.Attrs {
		if _, ok := properties[a.Name]; ok {
			add(Declaration{Property: a.Name, Value: strings.TrimSpace(a.Value)}, originPresentation, Specificity{})
		}
	}
	for _, rule := range sheet.Match(n) {
		for _, d := range rule.Declarations {
			origin := originRule
			if d.Important {
				origin = originRuleImportant
			}
			add(d, origin, rule.Selector.spec)
		}
	}
	var inlineErr error
	if raw, ok := n.Get("style"); ok {
		inline, err := ParseDeclarations(raw)
		if err != nil {
			inlineErr = fmt.Errorf("inline style of <%s>: %w", n.Tag, err)
		}
		for _, d := range inline {
			origin := originInline
			if d.Important {
				origin = originInlineImportant
			}
			add(d, origin, Specificity{})
		}
	}

	sort.SliceStable(decls, func(i, j int) bool {
		a, b := decls[i], decls[j]
		if a.origin != b.origin {
			return a.origin < b.origin
		}
		if a.spec != b.spec {
			return a.spec.Less(b.spec)
		}
		return a.order < b.order
	})

	winners := make(map[string]string)
	customDeclared := make(map[string]string)
	for _, c := range decls {
		if strings.HasPrefix(c.decl.Property, "--") {
			customDeclared[c.decl.Property] = c.decl.Value
			continue
		}
		winners[c.decl.Property] = c.decl.Value
	}

	out := Style{
		values: make(map[string]string, len(properties)),
		custom: make(map[string]string, len(parent.custom)+len(customDeclared)),
	}
	for k, v := range parent.custom {
		out.custom[k] = v
	}
	for k, v := range customDeclared {
		out.custom[k] = v
	}
	raw := make(map[string]string, len(out.custom))
	for k, v := range out.custom {
		raw[k] = v
	}
	for k := range customDeclared {
		v, ok := substituteVars(raw[k], raw, map[string]bool{k: true}, 0)
		switch {
		case !ok:
			if pv, inherited := parent.custom[k]; inherited {
				out.custom[k] = pv
			} else {
				delete(out.custom, k)
			}
		default:
			out.custom[k] = v
		}
	}

	// color first: currentColor refers to it.
	out.values["color"] = computeValue("color", winners, parent, out)
	for _, name := range propertyOrder {
		if name == "color" {
			continue
		}
		out.values[name] = computeValue(name, winners, parent, out)
	}
	return out, inlineErr
}

func computeValue(name string, winners map[string]string, parent, self Style) string {
	p := properties[name]
	fallback := func() string {
		if p.inherited {
			return parent.values[name]
		}
		return p.initial
	}
	raw, ok := winners[name]
	if !ok {
		return fallback()
	}
	v, ok := substituteVars(raw, self.custom, nil, 0)
	if !ok {
		return fallback()
	}
	switch strings.ToLower(v) {
	case "inherit":
		return parent.values[name]
	case "initial":
		return p.initial
	case "unset":
		return fallback()
	}
	norm, err := normalize(name, p.kind, v, parent, self)
	if err != nil {
		// Invalid declarations are dropped by the cascade.
		return fallback()
	}
	return norm
}

// substituteVars replaces var(--name[, fallback]) references. ok is false
// when a reference cannot be resolved, which makes the declaration invalid
// at computed-value time.
func substituteVars(v string, custom map[string]string, visiting map[string]bool, depth int) (string, bool) {
	if depth > maxVarDepth {
		return "", false
	}
	for {
		i := strings.Index(v, "var(")
		if i < 0 {
			return v, true
		}
		end := matchParen(v, i+3)
		if end < 0 {
			return "", false
		}
		inner := v[i+4 : end]
		name, fb, hasFallback := strings.Cut(inner, ",")
		name = strings.TrimSpace(name)

		var repl string
		val, found := custom[name]
		switch {
		case found && !visiting[name]:
			next := map[string]bool{name: true}
			for k := range visiting {
				next[k] = true
			}
			r, ok := substituteVars(val, custom, next, depth+1)
			if !ok {
				return "", false
			}
			repl = r
		case hasFallback:
			r, ok := substituteVars(strings.TrimSpace(fb), custom, visiting, depth+1)
			if !ok {
				return "", false
			}
			repl = r
		default:
			return "", false
		}
		v = v[:i] + strings.TrimSpace(repl) + v[end+1:]
	}
}

func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func normalize(name string, kind valueKind, v string, parent, self Style) (string, error) {
	v = strings.Join(strings.Fields(v), " ")
	switch kind {
	case kindColor, kindPaint:
		lv := strings.ToLower(v)
		if kind == kindPaint && (lv == "none" || strings.HasPrefix(lv, "url(")) {
			return lv, nil
		}
		if lv == "currentcolor" {
			if name == "color" {
				return parent.values["color"], nil
			}
			return self.values["color"], nil
		}
		c, err := ParseColor(v)
		if err != nil {
			return "", err
		}
		return FormatColor(c), nil
	case kindLength:
		return normalizeLength(name, v, parent)
	case kindNumber:
		f, err := parseNumberOrPercent(v)
		if err != nil {
			return "", err
		}
		return formatNumber(clamp(f, 0, 1)), nil
	case kindWeight:
		return normalizeWeight(v, parent.values["font-weight"])
	case kindDash:
		if strings.ToLower(v) == "none" {
			return "none", nil
		}
		parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			l, err := normalizeLength(name, part, parent)
			if err != nil {
				return "", err
			}
			out = append(out, l)
		}
		if len(out) == 0 {
			return "", fmt.Errorf("empty dash array")
		}
		return strings.Join(out, ", "), nil
	default:
		if name == "font-family" {
			return v, nil
		}
		return strings.ToLower(v), nil
	}
}

func normalizeLength(name, v string, parent Style) (string, error) {
	lv := strings.ToLower(v)
	parentSize := parent.Number("font-size")
	var px float64
	switch {
	case strings.HasSuffix(lv, "px"):
		f, err := strconv.ParseFloat(lv[:len(lv)-2], 64)
		if err != nil {
			return "", err
		}
		px = f
	case strings.HasSuffix(lv, "rem"):
		f, err := strconv.ParseFloat(lv[:len(lv)-3], 64)
		if err != nil {
			return "", err
		}
		px = f * 16
	case strings.HasSuffix(lv, "em"):
		f, err := strconv.ParseFloat(lv[:len(lv)-2], 64)
		if err != nil {
			return "", err
		}
		px = f * parentSize
	case strings.HasSuffix(lv, "pt"):
		f, err := strconv.ParseFloat(lv[:len(lv)-2], 64)
		if err != nil {
			return "", err
		}
		px = f * 4 / 3
	case strings.HasSuffix(lv, "%"):
		if name != "font-size" {
			// Percentages of the viewport stay relative.
			if _, err := strconv.ParseFloat(lv[:len(lv)-1], 64); err != nil {
				return "", err
			}
			return lv, nil
		}
		f, err := strconv.ParseFloat(lv[:len(lv)-1], 64)
		if err != nil {
			return "", err
		}
		px = f / 100 * parentSize
	default:
		f, err := strconv.ParseFloat(lv, 64)
		if err != nil {
			return "", err
		}
		px = f
	}
	if px < 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return "", fmt.Errorf("invalid length %q", v)
	}
	return formatNumber(px) + "px", nil
}

func parseNumberOrPercent(v string) (float64, error) {
	if strings.HasSuffix(v, "%") {
		return parsePercent(v)
	}
	return strconv.ParseFloat(v, 64)
}

func normalizeWeight(v, parent string) (string, error) {
	pw, _ := strconv.ParseFloat(parent, 64)
	switch strings.ToLower(v) {
	case "normal":
		return "400", nil
	case "bold":
		return "700", nil
	case "bolder":
		switch {
		case pw < 350:
			return "400", nil
		case pw < 550:
			return "700", nil
		default:
			return "900", nil
		}
	case "lighter":
		switch {
		case pw < 550:
			return "100", nil
		case pw < 750:
			return "400", nil
		default:
			return "700", nil
		}
	}
	w, err := strconv.ParseFloat(v, 64)
	if err != nil || w < 1 || w > 1000 {
		return "", fmt.Errorf("invalid font-weight %q", v)
	}
	return formatNumber(w), nil
}
