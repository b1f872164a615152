// Package visibility detects when a page region scrolls into view.
//
// A [Trigger] subscribes to an [Observer] (the host's intersection primitive)
// and fires a single "became visible" event the first time the region's
// visible fraction reaches a threshold. The transition is terminal: later
// reports, including the region scrolling away and back, are ignored.
//
// [Viewport] is a portable Observer that computes intersection ratios of
// rectangular regions against a scrollable viewport. Browsers use their own
// IntersectionObserver instead; see the SVG sink in package render.
package visibility

import (
	"math"

	"github.com/synmed/synviz/pkg/observability"
)

// Default thresholds used by the landing page.
const (
	ChartThreshold   = 0.3
	CounterThreshold = 0.5
)

// Entry is a single intersection report for a region.
type Entry struct {
	Region       string
	Ratio        float64 // visible area / region area, in [0,1]
	Intersecting bool
}

// Subscription releases an observation.
type Subscription interface {
	Unobserve()
}

// Observer is the host intersection primitive.
type Observer interface {
	// Observe reports intersection changes of region to fn until the
	// subscription is released. threshold is a hint for observers that only
	// report threshold crossings.
	Observe(region string, threshold float64, fn func(Entry)) Subscription
}

// Trigger is a one-shot visibility detector.
//
// Trigger is not safe for concurrent use; drive it from a single event loop.
type Trigger struct {
	region    string
	threshold float64
	sub       Subscription
	fired     bool
	closed    bool
	listeners []func()
}

// NewTrigger subscribes to observer and returns a trigger for region.
// threshold is clamped to [0,1]; NaN is treated as 0. A nil observer yields
// a trigger that never fires.
func NewTrigger(observer Observer, region string, threshold float64) *Trigger {
	t := &Trigger{region: region, threshold: ClampThreshold(threshold)}
	if observer != nil {
		sub := observer.Observe(region, t.threshold, t.handle)
		// The observer may have reported synchronously and fired already.
		if t.fired || t.closed {
			sub.Unobserve()
		} else {
			t.sub = sub
		}
	}
	return t
}

// ClampThreshold clamps a visibility threshold into [0,1].
func ClampThreshold(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Region returns the observed region.
func (t *Trigger) Region() string { return t.region }

// Threshold returns the effective threshold.
func (t *Trigger) Threshold() float64 { return t.threshold }

// Visible reports whether the trigger has fired.
func (t *Trigger) Visible() bool { return t.fired }

// OnVisible registers fn to run when the trigger fires. If the trigger has
// already fired, fn runs immediately. Listeners registered on a closed,
// unfired trigger never run.
func (t *Trigger) OnVisible(fn func()) {
	if t.fired {
		fn()
		return
	}
	if t.closed {
		return
	}
	t.listeners = append(t.listeners, fn)
}

// Close releases the subscription. A trigger that has not fired yet will
// never fire.
func (t *Trigger) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.release()
	t.listeners = nil
}

func (t *Trigger) handle(e Entry) {
	if t.fired || t.closed {
		return
	}
	if !e.Intersecting || math.IsNaN(e.Ratio) || e.Ratio < t.threshold {
		return
	}
	t.fired = true
	t.release()
	observability.Animation().OnTriggerFired(t.region, e.Ratio)

	listeners := t.listeners
	t.listeners = nil
	for _, fn := range listeners {
		fn()
	}
}

func (t *Trigger) release() {
	if t.sub != nil {
		t.sub.Unobserve()
		t.sub = nil
	}
}
