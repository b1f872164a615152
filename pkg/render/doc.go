// Package render selects output formats and dispatches scenes to the sinks.
//
// # Overview
//
// The [sink] subpackage holds one renderer per output format. This package
// names the formats, validates format lists coming from flags and requests,
// and renders a chart or counter to all requested formats at once:
//
//	out, err := render.Chart(chart.Scene(), chart.Timing(), []render.Format{render.FormatSVG, render.FormatPNG}, render.Options{})
//
// [sink]: github.com/synmed/synviz/pkg/render/sink
package render
