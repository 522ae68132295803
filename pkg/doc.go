// Package pkg holds the ratechart libraries.
//
// # Overview
//
// Ratechart draws the Korean total fertility rate of selected years as a
// line chart and exports the on-screen chart as a PNG. The packages are
// organised in three layers:
//
//  1. Model: [dataset] (points and the built-in table), [scene] (vector
//     scene with a CSS cascade) and [chart] (scene builder, themes, panel)
//  2. Export: [export] (inline, serialize, decode, draw, encode, emit),
//     [raster] (surfaces and SVG decoders), [blob] (transient handles) and
//     [fonts]
//  3. Orchestration: [pipeline] (runner with caching), [cache], [config],
//     [server] and [observability]
//
// # Data flow
//
//	dataset.Selection
//	       ↓
//	chart.Panel  (live scene, styled by the theme stylesheet)
//	       ↓
//	export.Exporter
//	   clone → inline styles → serialize → decode → draw → encode PNG → emit
//	       ↓
//	출산율-그래프.png  (1600x1200)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Export(ctx, dataset.All(), export.FileEmitter{Dir: "."}, pipeline.Options{})
//
// [dataset]: github.com/matzehuels/ratechart/pkg/dataset
// [scene]: github.com/matzehuels/ratechart/pkg/scene
// [chart]: github.com/matzehuels/ratechart/pkg/chart
// [export]: github.com/matzehuels/ratechart/pkg/export
// [raster]: github.com/matzehuels/ratechart/pkg/raster
// [blob]: github.com/matzehuels/ratechart/pkg/blob
// [fonts]: github.com/matzehuels/ratechart/pkg/fonts
// [pipeline]: github.com/matzehuels/ratechart/pkg/pipeline
// [cache]: github.com/matzehuels/ratechart/pkg/cache
// [config]: github.com/matzehuels/ratechart/pkg/config
// [server]: github.com/matzehuels/ratechart/pkg/server
// [observability]: github.com/matzehuels/ratechart/pkg/observability
package pkg
