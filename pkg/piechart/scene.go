package piechart

import (
	"math"
	"strconv"
	"time"

	"github.com/synmed/synviz/pkg/geometry"
)

// Hidden-state styling of elements that have not been revealed.
const (
	HiddenScale   = 0.75 // slices start at 75% size
	HiddenOffsetY = 16.0 // legend entries start 16px below their slot
)

// Scene is a declarative snapshot of a chart, ready for a sink to paint.
type Scene struct {
	ID       string        `json:"id"`
	Title    string        `json:"title,omitempty"`
	Center   string        `json:"center,omitempty"`
	Revealed bool          `json:"revealed"`
	Elapsed  time.Duration `json:"elapsed"`
	Slices   []Slice       `json:"slices"`
	Legend   []LegendEntry `json:"legend"`
}

// Slice describes one pie sector and its reveal transition.
type Slice struct {
	Index      int             `json:"index"`
	Label      string          `json:"label"`
	Percentage float64         `json:"percentage"`
	Sector     geometry.Sector `json:"sector"`
	Path       string          `json:"path"`
	Fill       string          `json:"fill"`
	Delay      time.Duration   `json:"delay"`
	Duration   time.Duration   `json:"duration"`
	Progress   float64         `json:"progress"` // eased, 0 hidden .. 1 final
	Opacity    float64         `json:"opacity"`
	Scale      float64         `json:"scale"`
}

// LegendEntry describes one legend row and its reveal transition.
type LegendEntry struct {
	Index    int           `json:"index"`
	Label    string        `json:"label"`
	Detail   string        `json:"detail"`
	Fill     string        `json:"fill"`
	Delay    time.Duration `json:"delay"`
	Duration time.Duration `json:"duration"`
	Progress float64       `json:"progress"`
	Opacity  float64       `json:"opacity"`
	OffsetY  float64       `json:"offset_y"`
}

// Scene returns the chart as of the scheduler's current time.
func (c *Chart) Scene() Scene {
	return c.SceneAt(c.Elapsed())
}

// SceneAt returns the chart as it looks elapsed after reveal. A hidden chart
// always renders in its initial state.
func (c *Chart) SceneAt(elapsed time.Duration) Scene {
	if !c.revealed {
		elapsed = -1
	}
	s := Scene{
		ID:       c.id,
		Title:    c.title,
		Center:   c.center,
		Revealed: c.revealed,
		Elapsed:  max(elapsed, 0),
		Slices:   make([]Slice, len(c.sectors)),
		Legend:   make([]LegendEntry, len(c.sectors)),
	}
	for i, sec := range c.sectors {
		seg := c.segments[i]
		fill := geometry.Color(sec.ColorIndex)

		delay := c.timing.SliceDelay(i)
		p := progress(elapsed, delay, c.timing.Duration)
		s.Slices[i] = Slice{
			Index:      i,
			Label:      seg.Label,
			Percentage: geometry.Sanitize(seg.Percentage),
			Sector:     sec,
			Path:       sec.Path(),
			Fill:       fill,
			Delay:      delay,
			Duration:   c.timing.Duration,
			Progress:   p,
			Opacity:    p,
			Scale:      HiddenScale + (1-HiddenScale)*p,
		}

		ldelay := c.timing.LegendEntryDelay(i)
		lp := progress(elapsed, ldelay, c.timing.LegendDuration)
		s.Legend[i] = LegendEntry{
			Index:    i,
			Label:    seg.Label,
			Detail:   LegendDetail(seg),
			Fill:     fill,
			Delay:    ldelay,
			Duration: c.timing.LegendDuration,
			Progress: lp,
			Opacity:  lp,
			OffsetY:  HiddenOffsetY * (1 - lp),
		}
	}
	return s
}

// Done reports whether every element of the scene finished its transition.
func (s Scene) Done() bool {
	if !s.Revealed {
		return false
	}
	for _, sl := range s.Slices {
		if sl.Progress < 1 {
			return false
		}
	}
	for _, l := range s.Legend {
		if l.Progress < 1 {
			return false
		}
	}
	return true
}

// TotalDuration returns the time from reveal until the last element settles.
func (t Timing) TotalDuration(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return max(t.SliceDelay(n-1)+t.Duration, t.LegendEntryDelay(n-1)+t.LegendDuration)
}

// LegendDetail formats the secondary legend text: "1.2M (35%)" when the
// segment has a detail, "35%" otherwise.
func LegendDetail(seg geometry.Segment) string {
	pct := FormatPercent(seg.Percentage)
	if seg.Detail == "" {
		return pct
	}
	return seg.Detail + " (" + pct + ")"
}

// FormatPercent renders a sanitized percentage without trailing zeros.
func FormatPercent(p float64) string {
	p = math.Round(geometry.Sanitize(p)*100) / 100
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// progress returns the eased completion of a transition that starts at delay
// and lasts d, elapsed after reveal. Negative elapsed means not revealed.
func progress(elapsed, delay, d time.Duration) float64 {
	if elapsed < 0 || elapsed < delay {
		return 0
	}
	if d <= 0 {
		return 1
	}
	t := float64(elapsed-delay) / float64(d)
	if t >= 1 {
		return 1
	}
	return EaseOut(t)
}

// EaseOut is a cubic ease-out curve mapping [0,1] onto [0,1].
func EaseOut(t float64) float64 {
	t = math.Min(math.Max(t, 0), 1)
	u := 1 - t
	return 1 - u*u*u
}
