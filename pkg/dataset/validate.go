package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/synmed/synviz/pkg/errors"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/numfmt"
	"github.com/synmed/synviz/pkg/piechart"
)

// sumTolerance is how far a chart's total may drift from 100 before
// Validate warns.
const sumTolerance = 0.01

// Warning is a non-fatal dataset problem.
type Warning struct {
	Path    string // e.g. "chart[states].segment[2]"
	Message string
}

func (w Warning) String() string { return w.Path + ": " + w.Message }

// Validate reports soft problems. The dataset still renders: charts whose
// percentages do not sum to 100 leave a gap or overlap, duplicate names
// resolve to the first entry.
func (d *Dataset) Validate() []Warning {
	var ws []Warning
	add := func(path, format string, args ...any) {
		ws = append(ws, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if d.Locale != "" && !slices.Contains(numfmt.Locales, d.Locale) {
		add("locale", "%q is not a page language %v", d.Locale, numfmt.Locales)
	}
	if len(d.Charts) == 0 && len(d.Counters) == 0 {
		add("", "dataset has no charts or counters")
	}

	seen := map[string]bool{}
	for _, c := range d.Counters {
		path := fmt.Sprintf("counter[%s]", c.Name)
		if seen["counter:"+c.Name] {
			add(path, "duplicate name")
		}
		seen["counter:"+c.Name] = true
		if c.Target == 0 {
			add(path, "target is 0")
		}
		if c.Steps < 0 {
			add(path, "steps %d is negative, using default", c.Steps)
		}
	}

	for _, c := range d.Charts {
		path := fmt.Sprintf("chart[%s]", c.Name)
		if seen["chart:"+c.Name] {
			add(path, "duplicate name")
		}
		seen["chart:"+c.Name] = true
		if len(c.Segments) == 0 {
			add(path, "no segments")
			continue
		}
		if len(c.Segments) > geometry.PaletteSize {
			add(path, "%d segments share %d colours", len(c.Segments), geometry.PaletteSize)
		}
		for i, s := range c.Segments {
			if err := errors.ValidateLabel(s.Label); err != nil {
				add(fmt.Sprintf("%s.segment[%d]", path, i), "%s", errors.UserMessage(err))
			}
			if s.Percentage == 0 {
				add(fmt.Sprintf("%s.segment[%d]", path, i), "percentage is 0, slice has no area")
			}
		}
		if total := geometry.Total(c.GeometrySegments()); math.Abs(total-100) > sumTolerance {
			add(path, "percentages sum to %s, not 100%%", piechart.FormatPercent(total))
		}
	}
	return ws
}
