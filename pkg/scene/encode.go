package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Marshal renders n and its subtree as SVG markup. Output depends only on
// the tree, so equal trees give byte-identical markup.
func Marshal(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n, 0)
	return buf.Bytes()
}

// Encode writes the markup for n to w.
func Encode(w io.Writer, n *Node) error {
	_, err := w.Write(Marshal(n))
	return err
}

func writeNode(buf *bytes.Buffer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		fmt.Fprintf(buf, ` %s="`, a.Name)
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if len(n.Children) == 0 && n.Text == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteByte('>')
	if n.Text != "" {
		xml.EscapeText(buf, []byte(n.Text))
	}
	if len(n.Children) > 0 {
		buf.WriteByte('\n')
		for _, c := range n.Children {
			writeNode(buf, c, depth+1)
		}
		buf.WriteString(indent)
	}
	fmt.Fprintf(buf, "</%s>\n", n.Tag)
}

// WriteSVG writes a standalone preview of the scene: the tree with the
// document stylesheet embedded as a <style> element. Viewers that honour
// <style> show the chart as it looks in the page.
func (s *Scene) WriteSVG(w io.Writer) error {
	root := s.Root.Clone()
	if _, ok := root.Get("xmlns"); !ok {
		root.Set("xmlns", SVGNamespace)
	}
	if css := strings.TrimSpace(s.Sheet.String()); css != "" {
		style := El("style")
		style.Text = css
		root.Prepend(style)
	}
	return Encode(w, root)
}

// SVGNamespace is the SVG XML namespace.
const SVGNamespace = "http://www.w3.org/2000/svg"

// Parse reads SVG markup into a node tree. Whitespace-only text is dropped.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := El(t.Name.Local)
			for _, a := range t.Attr {
				name := a.Name.Local
				if a.Name.Space == "xmlns" {
					name = "xmlns:" + name
				}
				n.Attrs = append(n.Attrs, Attr{Name: name, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse svg: multiple root elements")
				}
				root = n
			} else {
				stack[len(stack)-1].Append(n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 && strings.TrimSpace(string(t)) != "" {
				top := stack[len(stack)-1]
				top.Text += strings.TrimSpace(string(t))
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parse svg: no root element")
	}
	return root, nil
}
