// Package chart builds the on-screen line chart scene for a set of
// (year, rate) points and hosts it in a [Panel].
//
// The chart is a single-series line chart in the style of the original web
// panel: a dashed Cartesian grid, an x axis with one tick per year, a y axis
// over [0, max rate + 0.3], a monotone cubic curve and one circle marker per
// point. Markup follows recharts' class names so a document stylesheet can
// target it, and every colour is a CSS custom property defined by the
// [Theme].
//
// # Themes
//
// The panel exists in two presentation variants that differ only in
// spacing, corner radius and shadow. Both are values of one [Theme] type:
//
//	chart.Card()     // compact card
//	chart.Elegant()  // roomier panel with a soft shadow
//
// Themes can be overridden from TOML with [LoadTheme].
//
// # Panels
//
// [Panel] owns the live scene. It rebuilds the scene when its
// [dataset.Selection] changes and reports pointer hover through the
// callback registered with [Panel.OnHover].
package chart
