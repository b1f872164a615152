// Package piechart renders percentage distributions as pie charts that
// reveal themselves once scrolled into view.
//
// # Overview
//
// A [Chart] owns the sector geometry for its segments (see package geometry)
// and a single revealed flag. The flag flips once, when the attached
// visibility trigger fires. From then on each sector fades and scales in
// after a per-index delay, and each legend entry follows after a longer base
// delay:
//
//	slice  i: delay = i * Stagger                      (150ms)
//	legend i: delay = LegendDelay + i * LegendStagger  (800ms + i*100ms)
//
// The chart itself never paints. [Chart.Scene] returns a declarative
// description that sinks turn into SVG with CSS transitions, raster frames,
// PDF pages or terminal output.
//
// # Event loop
//
// Reveal transitions are scheduled on a [schedule.Scheduler]; listeners
// registered with [Chart.OnTransition] are told when each element starts
// moving, strictly in index order. A Chart is not safe for concurrent use.
package piechart

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/observability"
	"github.com/synmed/synviz/pkg/schedule"
	"github.com/synmed/synviz/pkg/visibility"
)

// Reveal timing defaults.
const (
	DefaultStagger        = 150 * time.Millisecond
	DefaultDuration       = 1500 * time.Millisecond
	DefaultLegendDelay    = 800 * time.Millisecond
	DefaultLegendStagger  = 100 * time.Millisecond
	DefaultLegendDuration = 700 * time.Millisecond
)

// Kind distinguishes chart elements.
type Kind int

const (
	KindSlice Kind = iota
	KindLegend
)

func (k Kind) String() string {
	if k == KindLegend {
		return "legend"
	}
	return "slice"
}

// Transition reports an element starting its reveal.
type Transition struct {
	Kind  Kind
	Index int
	At    time.Duration // scheduler time
}

// Timing holds the reveal schedule of a chart.
type Timing struct {
	Stagger        time.Duration `json:"stagger"`
	Duration       time.Duration `json:"duration"`
	LegendDelay    time.Duration `json:"legend_delay"`
	LegendStagger  time.Duration `json:"legend_stagger"`
	LegendDuration time.Duration `json:"legend_duration"`
}

// DefaultTiming returns the landing page's reveal schedule.
func DefaultTiming() Timing {
	return Timing{
		Stagger:        DefaultStagger,
		Duration:       DefaultDuration,
		LegendDelay:    DefaultLegendDelay,
		LegendStagger:  DefaultLegendStagger,
		LegendDuration: DefaultLegendDuration,
	}
}

// SliceDelay returns the reveal delay of slice i.
func (t Timing) SliceDelay(i int) time.Duration { return time.Duration(i) * t.Stagger }

// LegendEntryDelay returns the reveal delay of legend entry i.
func (t Timing) LegendEntryDelay(i int) time.Duration {
	return t.LegendDelay + time.Duration(i)*t.LegendStagger
}

// Option configures a Chart.
type Option func(*Chart)

// WithID sets the chart's element ID. The default is a random UUID.
func WithID(id string) Option { return func(c *Chart) { c.id = id } }

// WithTitle sets the chart heading.
func WithTitle(s string) Option { return func(c *Chart) { c.title = s } }

// WithCenterLabel sets the text shown in the middle of the pie.
func WithCenterLabel(s string) Option { return func(c *Chart) { c.center = s } }

// WithTiming replaces the reveal schedule. Zero fields keep their defaults.
func WithTiming(t Timing) Option {
	return func(c *Chart) {
		if t.Stagger > 0 {
			c.timing.Stagger = t.Stagger
		}
		if t.Duration > 0 {
			c.timing.Duration = t.Duration
		}
		if t.LegendDelay > 0 {
			c.timing.LegendDelay = t.LegendDelay
		}
		if t.LegendStagger > 0 {
			c.timing.LegendStagger = t.LegendStagger
		}
		if t.LegendDuration > 0 {
			c.timing.LegendDuration = t.LegendDuration
		}
	}
}

// Chart is a pie chart with a one-shot staggered reveal.
type Chart struct {
	sched  schedule.Scheduler
	id     string
	title  string
	center string
	timing Timing

	segments []geometry.Segment
	sectors  []geometry.Sector

	revealed   bool
	revealedAt time.Duration
	closed     bool
	started    map[elementKey]bool
	timers     []schedule.Timer
	listeners  []func(Transition)
}

type elementKey struct {
	kind  Kind
	index int
}

// New creates a chart for segments. Geometry is computed immediately.
func New(sched schedule.Scheduler, segments []geometry.Segment, opts ...Option) *Chart {
	c := &Chart{
		sched:   sched,
		timing:  DefaultTiming(),
		started: make(map[elementKey]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = "chart-" + uuid.NewString()
	}
	c.setSegments(segments)
	return c
}

// ID returns the chart's element ID.
func (c *Chart) ID() string { return c.id }

// Title returns the chart heading.
func (c *Chart) Title() string { return c.title }

// Timing returns the reveal schedule.
func (c *Chart) Timing() Timing { return c.timing }

// Segments returns a copy of the chart's segments.
func (c *Chart) Segments() []geometry.Segment { return slices.Clone(c.segments) }

// Sectors returns a copy of the computed geometry.
func (c *Chart) Sectors() []geometry.Sector { return slices.Clone(c.sectors) }

// Revealed reports whether the chart has been revealed.
func (c *Chart) Revealed() bool { return c.revealed }

// Elapsed returns the time since reveal, or 0 if the chart is hidden.
func (c *Chart) Elapsed() time.Duration {
	if !c.revealed {
		return 0
	}
	return c.sched.Now() - c.revealedAt
}

// Attach reveals the chart when trigger fires.
func (c *Chart) Attach(trigger *visibility.Trigger) {
	trigger.OnVisible(c.Reveal)
}

// OnTransition registers fn to be told when each element starts its reveal.
func (c *Chart) OnTransition(fn func(Transition)) {
	c.listeners = append(c.listeners, fn)
}

// Reveal switches the chart to its revealed state and schedules the
// staggered transitions. Only the first call has any effect.
func (c *Chart) Reveal() {
	if c.revealed || c.closed {
		return
	}
	c.revealed = true
	c.revealedAt = c.sched.Now()
	observability.Animation().OnChartRevealed(c.id, len(c.segments))
	c.schedule()
}

// SetSegments replaces the segments and recomputes geometry. The revealed
// flag is kept: a revealed chart stays revealed, and elements that already
// started keep their progress.
func (c *Chart) SetSegments(segments []geometry.Segment) {
	c.setSegments(segments)
	if c.revealed && !c.closed {
		c.cancel()
		c.schedule()
	}
}

// Close cancels pending transitions. The chart keeps its current state.
func (c *Chart) Close() {
	c.closed = true
	c.cancel()
}

// Pending returns the number of scheduled, not yet started transitions.
func (c *Chart) Pending() int { return len(c.timers) }

func (c *Chart) setSegments(segments []geometry.Segment) {
	c.segments = slices.Clone(segments)
	c.sectors = geometry.Compute(c.segments)
}

// schedule queues a transition for every element that has not started,
// offset from the original reveal time.
func (c *Chart) schedule() {
	elapsed := c.Elapsed()
	for i := range c.segments {
		c.queue(elementKey{KindSlice, i}, c.timing.SliceDelay(i)-elapsed)
	}
	for i := range c.segments {
		c.queue(elementKey{KindLegend, i}, c.timing.LegendEntryDelay(i)-elapsed)
	}
}

func (c *Chart) queue(key elementKey, d time.Duration) {
	if c.started[key] {
		return
	}
	var t schedule.Timer
	t = c.sched.AfterFunc(max(d, 0), func() {
		c.forget(t)
		c.start(key)
	})
	c.timers = append(c.timers, t)
}

func (c *Chart) start(key elementKey) {
	c.started[key] = true
	tr := Transition{Kind: key.kind, Index: key.index, At: c.sched.Now()}
	for _, fn := range c.listeners {
		fn(tr)
	}
}

func (c *Chart) forget(t schedule.Timer) {
	if i := slices.Index(c.timers, t); i >= 0 {
		c.timers = slices.Delete(c.timers, i, i+1)
	}
}

func (c *Chart) cancel() {
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
}
