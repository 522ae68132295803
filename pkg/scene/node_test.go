package scene

import (
	"bytes"
	"strings"
	"testing"
)

func sampleTree() *Node {
	root := El("svg", A("width", "800"), A("height", "600"))
	g := El("g", A("class", "grid"))
	g.Append(El("line", A("class", "grid-line"), A("x1", "0")), El("line", A("class", "grid-line")))
	root.Append(g, El("path", A("class", "line-curve"), A("d", "M0,0L10,10")))
	return root
}

func TestNodeAttrs(t *testing.T) {
	n := El("rect", A("x", "1"))
	n.Set("x", "2")
	n.Set("y", "3")
	if v, _ := n.Get("x"); v != "2" {
		t.Errorf("x = %q, want 2", v)
	}
	if len(n.Attrs) != 2 || n.Attrs[1].Name != "y" {
		t.Errorf("attrs = %v, want [x y]", n.Attrs)
	}
	if !n.Remove("x") || n.Remove("x") {
		t.Error("Remove should report presence exactly once")
	}
}

func TestNodeParentLinks(t *testing.T) {
	root := sampleTree()
	for _, d := range root.Descendants() {
		if d.Root() != root {
			t.Fatalf("%s not attached to root", d.Tag)
		}
	}

	other := El("g")
	line := root.Children[0].Children[0]
	other.Append(line)
	if len(root.Children[0].Children) != 1 {
		t.Errorf("moving a node should detach it from its old parent")
	}
	if line.Parent() != other {
		t.Errorf("parent = %v, want other", line.Parent())
	}

	style := El("style")
	root.Prepend(style)
	if root.Children[0] != style || style.Parent() != root {
		t.Error("Prepend should insert first child")
	}
}

func TestNodeClone(t *testing.T) {
	root := sampleTree()
	c := root.Clone()
	if c.Parent() != nil {
		t.Error("clone should be detached")
	}
	if !bytes.Equal(Marshal(root), Marshal(c)) {
		t.Fatal("clone markup differs from original")
	}

	c.Children[0].Children[0].Set("x1", "99")
	c.Append(El("text"))
	if v, _ := root.Children[0].Children[0].Get("x1"); v != "0" {
		t.Errorf("mutating clone changed original attr to %q", v)
	}
	if len(root.Children) != 2 {
		t.Errorf("mutating clone changed original children")
	}
	for _, d := range c.Descendants() {
		if d.Root() != c {
			t.Fatalf("cloned %s points outside the clone", d.Tag)
		}
	}
}

func TestFindAndClasses(t *testing.T) {
	root := sampleTree()
	if got := len(root.Find("grid-line")); got != 2 {
		t.Errorf("Find(grid-line) = %d nodes, want 2", got)
	}
	n := El("circle", A("class", "  dot  active "))
	if got := n.Classes(); len(got) != 2 || got[0] != "dot" || got[1] != "active" {
		t.Errorf("Classes() = %v", got)
	}
}

func TestMarshalParse(t *testing.T) {
	root := sampleTree()
	txt := El("text", A("x", "5"))
	txt.Text = "출산율 < 2"
	root.Append(txt)

	parsed, err := Parse(bytes.NewReader(Marshal(root)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(Marshal(parsed), Marshal(root)) {
		t.Errorf("reparsed markup differs:\n%s\n%s", Marshal(parsed), Marshal(root))
	}
	if got := parsed.Children[2].Text; got != "출산율 < 2" {
		t.Errorf("text = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "<svg>", "<svg/><svg/>"} {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestWriteSVGEmbedsStylesheet(t *testing.T) {
	sheet := MustParseStylesheet(".dot { fill: red; }")
	s := New(sampleTree(), sheet, 800, 600)
	var buf bytes.Buffer
	if err := s.WriteSVG(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("preview missing namespace")
	}
	if !strings.Contains(out, "<style>.dot { fill: red; }</style>") {
		t.Errorf("preview missing stylesheet:\n%s", out)
	}
	if _, ok := s.Root.Get("xmlns"); ok {
		t.Error("WriteSVG must not mutate the scene")
	}
}
