package export

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"

	"github.com/matzehuels/ratechart/pkg/scene"
)

// Logical export size and pixel density.
const (
	Width  = 800
	Height = 600
	Scale  = 2
)

// XLinkNamespace is declared on every exported document.
const XLinkNamespace = "http://www.w3.org/1999/xlink"

// Background is the fill of the shape inserted behind the chart.
const Background = "#ffffff"

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Serializer turns a style-inlined target into a self-contained SVG
// document of the export size.
type Serializer struct{}

// Serialize mutates target's root in place and returns the document.
func (Serializer) Serialize(target *scene.Scene) ([]byte, error) {
	if target == nil || target.Root == nil {
		return nil, fmt.Errorf("no export target")
	}
	root := target.Root
	if root.Tag != "svg" {
		return nil, fmt.Errorf("export target root is <%s>, want <svg>", root.Tag)
	}
	w, h := strconv.Itoa(Width), strconv.Itoa(Height)
	root.Set("xmlns", scene.SVGNamespace)
	root.Set("xmlns:xlink", XLinkNamespace)
	root.Set("width", w)
	root.Set("height", h)
	root.Set("viewBox", "0 0 "+w+" "+h)
	root.Prepend(scene.El("rect",
		scene.A("x", "0"),
		scene.A("y", "0"),
		scene.A("width", w),
		scene.A("height", h),
		scene.A("fill", Background),
		scene.A("style", "fill: "+scene.FormatColor(white)+";"),
	))

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if err := scene.Encode(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
