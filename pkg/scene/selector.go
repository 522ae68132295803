package scene

import (
	"fmt"
	"strings"
)

// Specificity is the (id, class, type) weight of a selector.
type Specificity [3]int

// Less orders specificities ascending.
func (s Specificity) Less(o Specificity) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

type compound struct {
	tag     string // "" or "*" match any element
	id      string
	classes []string
	root    bool
	never   bool // dynamic pseudo-classes never match a static scene
}

func (c compound) matches(n *Node) bool {
	if c.never {
		return false
	}
	if c.tag != "" && c.tag != "*" && c.tag != n.Tag {
		return false
	}
	if c.root && n.parent != nil {
		return false
	}
	if c.id != "" && n.ID() != c.id {
		return false
	}
	for _, cl := range c.classes {
		if !n.HasClass(cl) {
			return false
		}
	}
	return true
}

// Selector is a parsed complex selector made of compound selectors joined
// by descendant or child combinators.
type Selector struct {
	text        string
	parts       []compound
	combinators []byte // len(parts)-1 entries, ' ' or '>'
	spec        Specificity
}

func (s Selector) String() string { return s.text }

// Specificity returns the selector weight.
func (s Selector) Specificity() Specificity { return s.spec }

// Matches reports whether the selector applies to n.
func (s Selector) Matches(n *Node) bool {
	if len(s.parts) == 0 {
		return false
	}
	return s.matchAt(len(s.parts)-1, n)
}

func (s Selector) matchAt(i int, n *Node) bool {
	if !s.parts[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	if s.combinators[i-1] == '>' {
		return n.parent != nil && s.matchAt(i-1, n.parent)
	}
	for p := n.parent; p != nil; p = p.parent {
		if s.matchAt(i-1, p) {
			return true
		}
	}
	return false
}

// ParseSelector parses a selector such as "svg .recharts-dot" or
// "g > circle.dot:hover". Only type, universal, class, id and pseudo-class
// components are understood.
func ParseSelector(text string) (Selector, error) {
	text = strings.TrimSpace(text)
	sel := Selector{text: text}
	if text == "" {
		return sel, fmt.Errorf("empty selector")
	}

	var tokens []string
	var combs []byte
	pending := byte(0)
	for i := 0; i < len(text); {
		switch ch := text[i]; {
		case ch == ' ' || ch == '\t' || ch == '\n':
			if pending == 0 {
				pending = ' '
			}
			i++
		case ch == '>':
			pending = '>'
			i++
		case ch == '+' || ch == '~' || ch == '[':
			return sel, fmt.Errorf("unsupported selector syntax %q in %q", ch, text)
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(" \t\n>+~[", rune(text[j])) {
				j++
			}
			if len(tokens) > 0 {
				if pending == 0 {
					pending = ' '
				}
				combs = append(combs, pending)
			} else if pending == '>' {
				return sel, fmt.Errorf("selector %q starts with a combinator", text)
			}
			pending = 0
			tokens = append(tokens, text[i:j])
			i = j
		}
	}
	if pending == '>' {
		return sel, fmt.Errorf("selector %q ends with a combinator", text)
	}

	for _, tok := range tokens {
		c, err := parseCompound(tok, &sel.spec)
		if err != nil {
			return sel, fmt.Errorf("selector %q: %w", text, err)
		}
		sel.parts = append(sel.parts, c)
	}
	sel.combinators = combs
	return sel, nil
}

func parseCompound(tok string, spec *Specificity) (compound, error) {
	var c compound
	i := 0
	name := func() string {
		j := i
		for j < len(tok) && tok[j] != '.' && tok[j] != '#' && tok[j] != ':' {
			j++
		}
		s := tok[i:j]
		i = j
		return s
	}

	if tok[0] != '.' && tok[0] != '#' && tok[0] != ':' {
		c.tag = name()
		if c.tag != "*" {
			spec[2]++
		}
	}
	for i < len(tok) {
		kind := tok[i]
		i++
		if kind == ':' && i < len(tok) && tok[i] == ':' {
			// Pseudo-elements never produce element styles.
			i++
			name()
			c.never = true
			spec[2]++
			continue
		}
		v := name()
		if v == "" {
			return c, fmt.Errorf("empty component after %q", kind)
		}
		switch kind {
		case '.':
			c.classes = append(c.classes, v)
			spec[1]++
		case '#':
			c.id = v
			spec[0]++
		case ':':
			spec[1]++
			switch v {
			case "root":
				c.root = true
			case "hover", "active", "focus", "focus-visible", "focus-within", "visited":
				c.never = true
			default:
				c.never = true
			}
		}
	}
	return c, nil
}
