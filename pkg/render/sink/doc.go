// Package sink provides output format renderers for charts and counters.
//
// # Overview
//
// A "sink" turns a declarative [piechart.Scene] or [CounterView] into bytes.
// The chart and counter types never paint; sinks do. This package provides:
//
//   - SVG: vector output, static frames or browser-animated reveals
//   - PNG: raster frames at any point of the reveal
//   - PDF: a printable report of settled charts and counters
//   - JSON: scene export for external tools
//   - HTML: a standalone page of animated SVG, the landing page data section
//
// # SVG Output
//
// [RenderSVG] paints the scene as given. With [WithAnimation] every slice
// carries its transition-delay and the document includes a small script that
// adds the "revealed" class once an IntersectionObserver reports enough of
// the chart on screen:
//
//	svg := sink.RenderSVG(chart.Scene(),
//	    sink.WithAnimation(visibility.ChartThreshold, chart.Timing()),
//	)
//
// Browsers without IntersectionObserver never reveal the chart.
//
// # Raster and PDF Output
//
// [RenderPNG] draws with fogleman/gg; arcs are sampled into polygons so the
// same outline serves the raster and PDF paths. Pass a scene from
// [piechart.Chart.SceneAt] to capture an intermediate frame:
//
//	png, err := sink.RenderPNG(chart.SceneAt(600*time.Millisecond), sink.WithPNGScale(2))
//
// [RenderPDF] lays counters and charts out on A4 pages with go-pdf/fpdf and
// the Go fonts.
//
// # Layout
//
// Every format shares one card layout: an optional title, a 256px pie
// rotated so the first slice starts at 12 o'clock, and a two-column legend.
package sink
