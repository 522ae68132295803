package scene

import (
	"slices"
	"strings"
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// A returns an attribute.
func A(name, value string) Attr { return Attr{Name: name, Value: value} }

// Node is an element in a vector scene.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node

	parent *Node
}

// El creates a detached element.
func El(tag string, attrs ...Attr) *Node {
	return &Node{Tag: tag, Attrs: attrs}
}

// Parent returns the parent element, or nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Get returns the value of the named attribute.
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute or appends it if absent.
func (n *Node) Set(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Remove deletes the named attribute and reports whether it existed.
func (n *Node) Remove(name string) bool {
	i := slices.IndexFunc(n.Attrs, func(a Attr) bool { return a.Name == name })
	if i < 0 {
		return false
	}
	n.Attrs = slices.Delete(n.Attrs, i, i+1)
	return true
}

// Append adds children at the end and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.detach()
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Prepend inserts child before every existing child.
func (n *Node) Prepend(child *Node) {
	child.detach()
	child.parent = n
	n.Children = slices.Insert(n.Children, 0, child)
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := slices.Index(p.Children, n); i >= 0 {
		p.Children = slices.Delete(p.Children, i, i+1)
	}
	n.parent = nil
}

// ID returns the id attribute.
func (n *Node) ID() string {
	v, _ := n.Get("id")
	return v
}

// Classes returns the whitespace-separated class list.
func (n *Node) Classes() []string {
	v, _ := n.Get("class")
	return strings.Fields(v)
}

// HasClass reports whether class appears in the class list.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.Classes(), class)
}

// Root walks parent links up to the topmost ancestor.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Descendants returns every element below n in document order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// Find returns descendants (and n itself) that carry class.
func (n *Node) Find(class string) []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		if d.HasClass(class) {
			out = append(out, d)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of n. The copy is detached: its parent is nil
// and none of its nodes are shared with n.
func (n *Node) Clone() *Node {
	c := &Node{
		Tag:   n.Tag,
		Attrs: slices.Clone(n.Attrs),
		Text:  n.Text,
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			cc := child.Clone()
			cc.parent = c
			c.Children[i] = cc
		}
	}
	return c
}
