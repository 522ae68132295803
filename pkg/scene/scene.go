package scene

// Scene is a renderable chart: the root <svg> element plus the stylesheet
// of the document that hosts it.
type Scene struct {
	Root  *Node
	Sheet *Stylesheet

	// Width and Height are the on-screen size of the root element.
	Width, Height float64
}

// New returns a scene rooted at root.
func New(root *Node, sheet *Stylesheet, width, height float64) *Scene {
	if sheet == nil {
		sheet = &Stylesheet{}
	}
	return &Scene{Root: root, Sheet: sheet, Width: width, Height: height}
}

// Clone deep-copies the element tree. The stylesheet is immutable after
// parsing and is shared.
func (s *Scene) Clone() *Scene {
	c := *s
	if s.Root != nil {
		c.Root = s.Root.Clone()
	}
	return &c
}

// Attached reports whether n belongs to this scene's tree.
func (s *Scene) Attached(n *Node) bool {
	return s.Root != nil && n != nil && n.Root() == s.Root
}
