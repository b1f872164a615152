package render

import (
	"cmp"
	"slices"
	"strings"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/render/sink"
	"github.com/synmed/synviz/pkg/visibility"
)

// Format is an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Formats lists the supported formats in their canonical order.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatHTML}

// ContentType returns the MIME type of a format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// Ext returns the file extension of a format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, html)", s)
	}
	return f, nil
}

// ParseFormats parses a list of names, accepting comma-separated entries.
// Duplicates are dropped; the result keeps first-seen order.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// Options tunes rendering.
type Options struct {
	Animated  bool    // SVG: browser-driven reveal instead of a static frame
	Threshold float64 // visibility fraction for animated output, 0 for the default
	Scale     float64 // SVG size multiplier / PNG pixel density
	Title     string  // PDF/HTML heading
	Lang      string  // HTML lang attribute
}

// Chart renders one chart scene to each format.
func Chart(s piechart.Scene, timing piechart.Timing, formats []Format, opts Options) (map[Format][]byte, error) {
	out := make(map[Format][]byte, len(formats))
	for _, f := range formats {
		var (
			data []byte
			err  error
		)
		switch f {
		case FormatSVG:
			data = sink.RenderSVG(s, svgOptions(opts, timing, visibility.ChartThreshold)...)
		case FormatPNG:
			data, err = sink.RenderPNG(s, sink.WithPNGScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF([]piechart.Scene{s}, nil, sink.WithPDFTitle(opts.Title))
		case FormatJSON:
			data, err = sink.RenderJSON(s)
		case FormatHTML:
			data, err = sink.RenderHTML(sink.Page{
				Title: cmp.Or(opts.Title, s.Title), Lang: opts.Lang,
				Charts: []piechart.Scene{s}, Timing: timing, ChartThreshold: opts.Threshold,
			})
		default:
			err = errors.New(errors.ErrCodeUnsupported, "format %q", f)
		}
		if err != nil {
			return nil, err
		}
		out[f] = data
	}
	return out, nil
}

// Counter renders one counter view to each format.
func Counter(v sink.CounterView, formats []Format, opts Options) (map[Format][]byte, error) {
	out := make(map[Format][]byte, len(formats))
	for _, f := range formats {
		var (
			data []byte
			err  error
		)
		switch f {
		case FormatSVG:
			data = sink.RenderCounterSVG(v, svgOptions(opts, piechart.Timing{}, visibility.CounterThreshold)...)
		case FormatPNG:
			data, err = sink.RenderCounterPNG(v, sink.WithPNGScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(nil, []sink.CounterView{v}, sink.WithPDFTitle(opts.Title))
		case FormatJSON:
			data, err = sink.RenderCounterJSON(v)
		case FormatHTML:
			data, err = sink.RenderHTML(sink.Page{
				Title: cmp.Or(opts.Title, v.Label), Lang: opts.Lang,
				Counters: []sink.CounterView{v}, CounterThreshold: opts.Threshold,
			})
		default:
			err = errors.New(errors.ErrCodeUnsupported, "format %q", f)
		}
		if err != nil {
			return nil, err
		}
		out[f] = data
	}
	return out, nil
}

func svgOptions(opts Options, timing piechart.Timing, threshold float64) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Scale > 0 {
		out = append(out, sink.WithScale(opts.Scale))
	}
	if opts.Animated {
		out = append(out, sink.WithAnimation(cmp.Or(opts.Threshold, threshold), timing))
	}
	return out
}

