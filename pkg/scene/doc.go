// Package scene models a vector chart as a small SVG element tree with a
// document stylesheet, and resolves the effective style of each element.
//
// # Nodes
//
// A [Node] is an element with an ordered attribute list, optional text and
// children. Parent links are maintained by [Node.Append] and
// [Node.Prepend]; [Node.Clone] returns a deep, detached copy that shares no
// nodes with the original.
//
// # Scenes
//
// A [Scene] bundles the root <svg> element with the [Stylesheet] that styles
// it, the way a browser document owns both the inline SVG and the page's CSS.
// [Scene.Clone] copies the tree and keeps the (immutable) stylesheet.
//
// # Style Resolution
//
// [Resolver] computes what a browser's getComputedStyle would report for the
// SVG-relevant properties of a node:
//
//   - initial values and inheritance ([Properties] lists what is tracked)
//   - presentation attributes (fill="..."), rules ordered by importance,
//     specificity and source order, then the inline style attribute
//   - the inherit, initial and unset keywords
//   - custom properties and var() substitution with fallbacks
//   - colours normalised to rgb()/rgba(), bare lengths to px, em and % font
//     sizes made absolute, font-weight keywords made numeric
//
// Stylesheets are parsed with github.com/aymerick/douceur.
package scene
