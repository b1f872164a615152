// Package pkg provides the libraries behind synviz, the renderer for the
// animated data section of a landing page.
//
// # Overview
//
// A landing page's data section shows labelled distributions as pie charts
// that reveal slice by slice, and headline numbers that count up, each once
// it has been scrolled into view. The pkg directory is organized leaf to
// root:
//
//  1. [schedule] - Timers on a real event loop or a virtual clock
//  2. [visibility] - Viewport geometry and one-shot visibility triggers
//  3. [geometry] - Percentages to circular sectors, SVG arc paths, palette
//  4. [counter] - The count-up animator
//  5. [piechart] - Staggered slice and legend reveal, scene snapshots
//  6. [dataset] - TOML/JSON dataset files and their validation
//  7. [render] - Output formats (SVG, HTML, PNG, PDF, JSON)
//  8. [pipeline] - Load, select, render and cache, used by CLI and server
//
// # Architecture
//
// The data flow through synviz:
//
//	landing.toml
//	     ↓
//	[dataset] package (decode, sanitize, warn)
//	     ↓
//	[piechart] / [counter] on a [schedule.Virtual] clock
//	     ↓
//	scene at a chosen time after the reveal
//	     ↓
//	[render] sinks → SVG/HTML/PNG/PDF/JSON
//
// In a browser the reveal is driven by the page itself: animated SVG and
// HTML carry their own IntersectionObserver script and CSS transitions.
//
// # Quick Start
//
// Render the settled state of the built-in charts:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Formats: []render.Format{render.FormatSVG, render.FormatPNG},
//	})
//
// Drive a chart by hand:
//
//	clock := schedule.NewVirtual()
//	chart := piechart.New(clock, segments)
//	chart.Reveal()
//	clock.Advance(600 * time.Millisecond)
//	scene := chart.Scene()
//
// # Infrastructure
//
// [cache] - Artifact and dataset cache with file, Redis and null backends.
//
// [errors] - Error codes shared by the CLI and the preview server.
//
// [observability] - Hooks for trigger, animation, pipeline, cache and HTTP
// events. All default to no-ops.
//
// [numfmt] - Locale digit grouping for counter values.
//
// [buildinfo] - Version metadata set at link time.
//
// [schedule]: https://pkg.go.dev/github.com/synmed/synviz/pkg/schedule
// [schedule.Virtual]: https://pkg.go.dev/github.com/synmed/synviz/pkg/schedule#Virtual
// [visibility]: https://pkg.go.dev/github.com/synmed/synviz/pkg/visibility
// [geometry]: https://pkg.go.dev/github.com/synmed/synviz/pkg/geometry
// [counter]: https://pkg.go.dev/github.com/synmed/synviz/pkg/counter
// [piechart]: https://pkg.go.dev/github.com/synmed/synviz/pkg/piechart
// [dataset]: https://pkg.go.dev/github.com/synmed/synviz/pkg/dataset
// [render]: https://pkg.go.dev/github.com/synmed/synviz/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/synmed/synviz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/synmed/synviz/pkg/cache
// [errors]: https://pkg.go.dev/github.com/synmed/synviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/synmed/synviz/pkg/observability
// [numfmt]: https://pkg.go.dev/github.com/synmed/synviz/pkg/numfmt
// [buildinfo]: https://pkg.go.dev/github.com/synmed/synviz/pkg/buildinfo
package pkg
