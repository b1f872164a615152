// Package counter implements the count-up number animation.
//
// An [Animator] displays 0 until its visibility trigger fires, then counts up
// to its target in a fixed number of evenly spaced ticks:
//
//	increment = target / steps
//	value(k)  = min(round(increment * k), target)   for k = 1..steps
//
// The sequence is non-decreasing, has exactly steps entries and always ends
// on target. [Sequence] exposes it as a pure function.
package counter

import (
	"math"
	"math/bits"
	"strconv"
	"strings"
	"time"

	"github.com/synmed/synviz/pkg/numfmt"
	"github.com/synmed/synviz/pkg/observability"
	"github.com/synmed/synviz/pkg/schedule"
	"github.com/synmed/synviz/pkg/visibility"
)

const (
	// DefaultDuration is the total length of the count-up.
	DefaultDuration = 2000 * time.Millisecond

	// DefaultSteps is the number of ticks in the count-up.
	DefaultSteps = 60
)

// Sequence returns the values shown at ticks 1..steps for target.
// Negative targets are treated as 0 and steps < 1 as DefaultSteps.
func Sequence(target, steps int) []int {
	target = max(target, 0)
	if steps < 1 {
		steps = DefaultSteps
	}
	out := make([]int, steps)
	for k := 1; k <= steps; k++ {
		out[k-1] = valueAt(target, steps, k)
	}
	return out
}

// valueAt computes round(target*k/steps) exactly in integers, so large
// targets neither lose precision nor overflow.
func valueAt(target, steps, k int) int {
	if k >= steps {
		return target
	}
	q, r := target/steps, target%steps
	// r*k + steps/2 < steps*steps, so the high word is always below steps.
	hi, lo := bits.Mul64(uint64(r), uint64(k))
	lo, carry := bits.Add64(lo, uint64(steps/2), 0)
	frac, _ := bits.Div64(hi+carry, lo, uint64(steps))
	return min(q*k+int(frac), target)
}

// SanitizeTarget converts a configured value to a target. NaN, infinities and
// negative values become 0; fractions are rounded.
func SanitizeTarget(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(v))
}

// ParseTarget parses a target from text such as "50000" or "50,000".
// Malformed input yields 0.
func ParseTarget(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return SanitizeTarget(v)
}

// Frame is a snapshot of an animator's state.
type Frame struct {
	Step  int    `json:"step"`  // completed ticks, 0 before start
	Value int    `json:"value"` // current displayed value
	Text  string `json:"text"`  // prefix + formatted value + suffix
	Done  bool   `json:"done"`  // final tick reached
}

// Option configures an Animator.
type Option func(*Animator)

// WithPrefix sets the text shown before the number (e.g. "₹").
func WithPrefix(s string) Option { return func(a *Animator) { a.prefix = s } }

// WithSuffix sets the text shown after the number (e.g. " Cr").
func WithSuffix(s string) Option { return func(a *Animator) { a.suffix = s } }

// WithDuration sets the total animation time. Non-positive values keep the
// default.
func WithDuration(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.duration = d
		}
	}
}

// WithSteps sets the number of ticks. Values below 1 keep the default.
func WithSteps(n int) Option {
	return func(a *Animator) {
		if n > 0 {
			a.steps = n
		}
	}
}

// WithFormatter sets the number formatter. The default is numfmt.English.
func WithFormatter(f numfmt.Formatter) Option {
	return func(a *Animator) {
		if f != nil {
			a.format = f
		}
	}
}

// Animator counts up to a target once it becomes visible.
//
// Animator holds no locks: all methods and callbacks must run on the
// scheduler's event loop.
type Animator struct {
	sched    schedule.Scheduler
	target   int
	prefix   string
	suffix   string
	duration time.Duration
	steps    int
	format   numfmt.Formatter

	started bool
	closed  bool
	step    int
	current int
	timer   schedule.Timer
	onTick  []func(Frame)
}

// New creates an animator for target on sched. Negative targets are treated
// as 0.
func New(sched schedule.Scheduler, target int, opts ...Option) *Animator {
	a := &Animator{
		sched:    sched,
		target:   max(target, 0),
		duration: DefaultDuration,
		steps:    DefaultSteps,
		format:   numfmt.English,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Attach starts the animator when trigger fires.
func (a *Animator) Attach(trigger *visibility.Trigger) {
	trigger.OnVisible(a.Start)
}

// Target returns the final value.
func (a *Animator) Target() int { return a.target }

// Steps returns the configured tick count.
func (a *Animator) Steps() int { return a.steps }

// Interval returns the time between ticks. It is never shorter than
// [schedule.MinInterval], so very short durations stretch to fit every tick.
func (a *Animator) Interval() time.Duration {
	return max(a.duration/time.Duration(a.steps), schedule.MinInterval)
}

// End returns the time after Start at which the final tick fires.
func (a *Animator) End() time.Duration { return a.Interval() * time.Duration(a.steps) }

// Value returns the current displayed value.
func (a *Animator) Value() int { return a.current }

// Started reports whether the count-up has begun.
func (a *Animator) Started() bool { return a.started }

// Done reports whether the final tick has been reached.
func (a *Animator) Done() bool { return a.step >= a.steps }

// Duration returns the total animation time.
func (a *Animator) Duration() time.Duration { return a.duration }

// Text returns prefix + formatted value + suffix.
func (a *Animator) Text() string { return a.render(a.current) }

// Texts returns the displayed text before the start (index 0) and after each
// tick (index k).
func (a *Animator) Texts() []string {
	out := make([]string, a.steps+1)
	out[0] = a.render(0)
	for k, v := range Sequence(a.target, a.steps) {
		out[k+1] = a.render(v)
	}
	return out
}

// FrameAt returns the frame shown elapsed after the count-up started,
// independent of the animator's live state.
func (a *Animator) FrameAt(elapsed time.Duration) Frame {
	step := 0
	if elapsed > 0 {
		step = min(int(elapsed/a.Interval()), a.steps)
	}
	v := 0
	if step > 0 {
		v = valueAt(a.target, a.steps, step)
	}
	return Frame{Step: step, Value: v, Text: a.render(v), Done: step >= a.steps}
}

func (a *Animator) render(v int) string {
	return a.prefix + a.format.Format(v) + a.suffix
}

// Frame returns the current state.
func (a *Animator) Frame() Frame {
	return Frame{Step: a.step, Value: a.current, Text: a.Text(), Done: a.Done()}
}

// OnTick registers fn to receive a frame after every tick.
func (a *Animator) OnTick(fn func(Frame)) {
	a.onTick = append(a.onTick, fn)
}

// Start begins the count-up. Calls after the first, or after Close, do
// nothing.
func (a *Animator) Start() {
	if a.started || a.closed {
		return
	}
	a.started = true
	observability.Animation().OnCounterStart(a.target, a.steps, a.duration)
	a.timer = a.sched.Every(a.Interval(), a.tick)
}

// Close releases the tick timer. The displayed value stays where it is.
func (a *Animator) Close() {
	a.closed = true
	a.release()
}

func (a *Animator) tick() {
	if a.Done() {
		a.release()
		return
	}
	a.step++
	a.current = valueAt(a.target, a.steps, a.step)
	if a.Done() {
		a.release()
		observability.Animation().OnCounterComplete(a.target)
	}
	f := a.Frame()
	for _, fn := range a.onTick {
		fn(f)
	}
}

func (a *Animator) release() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
