package counter

import (
	"math"
	"testing"
	"time"

	"github.com/synmed/synviz/pkg/schedule"
	"github.com/synmed/synviz/pkg/visibility"
)

func TestSequenceEndsOnTarget(t *testing.T) {
	targets := []int{0, 1, 7, 59, 60, 61, 99, 100, 1000, 12345, 50000, 3500000,
		1<<53 + 1, math.MaxInt - 1, math.MaxInt}
	for _, target := range targets {
		for _, steps := range []int{1, 3, 60, 7} {
			seq := Sequence(target, steps)
			if len(seq) != steps {
				t.Fatalf("Sequence(%d, %d) has %d entries", target, steps, len(seq))
			}
			if last := seq[len(seq)-1]; last != target {
				t.Errorf("Sequence(%d, %d) ends at %d", target, steps, last)
			}
			for i := 1; i < len(seq); i++ {
				if seq[i] < seq[i-1] {
					t.Errorf("Sequence(%d, %d) decreases at %d: %d -> %d", target, steps, i, seq[i-1], seq[i])
				}
			}
		}
	}
}

func TestSequenceScenario(t *testing.T) {
	seq := Sequence(50000, 60)
	if got := seq[29]; math.Abs(float64(got-25000)) > 1 {
		t.Errorf("tick 30 = %d, want ~25000", got)
	}
	if got := seq[59]; got != 50000 {
		t.Errorf("tick 60 = %d, want 50000", got)
	}
}

func TestSequenceDefaults(t *testing.T) {
	if got := len(Sequence(10, 0)); got != DefaultSteps {
		t.Errorf("len(Sequence(10, 0)) = %d, want %d", got, DefaultSteps)
	}
	for _, v := range Sequence(-5, 10) {
		if v != 0 {
			t.Fatalf("negative target produced %d", v)
		}
	}
}

func TestSanitizeTarget(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{50000, 50000},
		{12.6, 13},
		{-3, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := SanitizeTarget(tt.in); got != tt.want {
			t.Errorf("SanitizeTarget(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"50000", 50000},
		{" 50,000 ", 50000},
		{"abc", 0},
		{"NaN", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ParseTarget(tt.in); got != tt.want {
			t.Errorf("ParseTarget(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAnimatorMatchesSequence(t *testing.T) {
	clock := schedule.NewVirtual()
	a := New(clock, 50000, WithPrefix("₹"), WithSuffix(" Cr"))

	var values []int
	a.OnTick(func(f Frame) { values = append(values, f.Value) })

	if a.Text() != "₹0 Cr" {
		t.Errorf("Text() before start = %q", a.Text())
	}

	a.Start()
	clock.Advance(5 * time.Second)

	want := Sequence(50000, DefaultSteps)
	if len(values) != len(want) {
		t.Fatalf("got %d ticks, want %d", len(values), len(want))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("tick %d = %d, want %d", i+1, values[i], want[i])
		}
	}
	if a.Text() != "₹50,000 Cr" {
		t.Errorf("Text() = %q, want %q", a.Text(), "₹50,000 Cr")
	}
	if clock.Pending() != 0 {
		t.Errorf("timer not released after final tick: %d pending", clock.Pending())
	}
}

func TestAnimatorTiming(t *testing.T) {
	clock := schedule.NewVirtual()
	a := New(clock, 600, WithDuration(time.Second), WithSteps(10))
	a.Start()

	clock.Advance(500 * time.Millisecond)
	if a.Frame().Step != 5 || a.Value() != 300 {
		t.Errorf("at 500ms: step %d value %d, want 5/300", a.Frame().Step, a.Value())
	}
	clock.Advance(500 * time.Millisecond)
	if !a.Done() || a.Value() != 600 {
		t.Errorf("at 1s: done=%v value=%d", a.Done(), a.Value())
	}
}

func TestAnimatorStartsOnlyOnce(t *testing.T) {
	clock := schedule.NewVirtual()
	a := New(clock, 100, WithSteps(4), WithDuration(400*time.Millisecond))

	ticks := 0
	a.OnTick(func(Frame) { ticks++ })

	a.Start()
	clock.Advance(200 * time.Millisecond)
	a.Start()
	clock.Advance(time.Second)
	a.Start()
	clock.Advance(time.Second)

	if ticks != 4 {
		t.Errorf("ticks = %d, want 4", ticks)
	}
}

func TestAnimatorCloseReleasesTimer(t *testing.T) {
	clock := schedule.NewVirtual()
	a := New(clock, 100)
	a.Start()
	clock.Advance(100 * time.Millisecond)
	v := a.Value()

	a.Close()
	if clock.Pending() != 0 {
		t.Errorf("Pending() = %d after Close", clock.Pending())
	}
	clock.Advance(5 * time.Second)
	if a.Value() != v || a.Done() {
		t.Errorf("animator advanced after Close: %d", a.Value())
	}
}

func TestAnimatorWaitsForTrigger(t *testing.T) {
	clock := schedule.NewVirtual()
	vp := visibility.NewViewport(100, 100)
	vp.Place("counter", visibility.Rect{Y: 400, W: 100, H: 20})

	trig := visibility.NewTrigger(vp, "counter", visibility.CounterThreshold)
	a := New(clock, 1000)
	a.Attach(trig)

	clock.Advance(10 * time.Second)
	if a.Started() || a.Value() != 0 {
		t.Fatal("animator started before becoming visible")
	}

	vp.ScrollTo(350)
	if !a.Started() {
		t.Fatal("animator did not start after becoming visible")
	}
	clock.Advance(DefaultDuration)
	if a.Value() != 1000 {
		t.Errorf("Value() = %d, want 1000", a.Value())
	}

	vp.ScrollTo(0)
	vp.ScrollTo(350)
	if clock.Pending() != 0 {
		t.Error("re-entering the viewport restarted the animator")
	}
}

func TestAnimatorWithoutObserverStaysStatic(t *testing.T) {
	clock := schedule.NewVirtual()
	a := New(clock, 1000)
	a.Attach(visibility.NewTrigger(nil, "counter", 0.5))
	clock.Advance(10 * time.Second)
	if a.Started() || a.Text() != "0" {
		t.Errorf("Text() = %q, want static 0", a.Text())
	}
}

func TestTextsAndFrameAt(t *testing.T) {
	a := New(schedule.NewVirtual(), 50000, WithPrefix("₹"), WithSuffix(" Cr"))

	texts := a.Texts()
	if len(texts) != DefaultSteps+1 {
		t.Fatalf("len(Texts()) = %d, want %d", len(texts), DefaultSteps+1)
	}
	if texts[0] != "₹0 Cr" || texts[30] != "₹25,000 Cr" || texts[60] != "₹50,000 Cr" {
		t.Errorf("Texts() = %q .. %q .. %q", texts[0], texts[30], texts[60])
	}

	tests := []struct {
		elapsed time.Duration
		step    int
		value   int
	}{
		{-time.Second, 0, 0},
		{0, 0, 0},
		{time.Second, 30, 25000},
		{2 * time.Second, 60, 50000},
		{time.Hour, 60, 50000},
	}
	for _, tt := range tests {
		f := a.FrameAt(tt.elapsed)
		if f.Step != tt.step || f.Value != tt.value {
			t.Errorf("FrameAt(%v) = step %d value %d, want %d/%d", tt.elapsed, f.Step, f.Value, tt.step, tt.value)
		}
	}
	if !a.FrameAt(2 * time.Second).Done {
		t.Error("FrameAt(duration) not done")
	}
	if a.Started() {
		t.Error("FrameAt started the animator")
	}
}

func TestSequenceExactRounding(t *testing.T) {
	tests := []struct {
		target, steps int
		want          []int
	}{
		{10, 4, []int{3, 5, 8, 10}},
		{1, 3, []int{0, 1, 1}},
		{2, 3, []int{1, 1, 2}},
		{1<<53 + 1, 2, []int{1<<52 + 1, 1<<53 + 1}},
	}
	for _, tt := range tests {
		got := Sequence(tt.target, tt.steps)
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Sequence(%d, %d) = %v, want %v", tt.target, tt.steps, got, tt.want)
				break
			}
		}
	}
}

func TestShortDurationStretchesInterval(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		steps    int
		interval time.Duration
	}{
		{"below one tick per ms", 10 * time.Millisecond, 60, schedule.MinInterval},
		{"more steps than nanoseconds", time.Nanosecond, 2, schedule.MinInterval},
		{"default", DefaultDuration, DefaultSteps, DefaultDuration / DefaultSteps},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := schedule.NewVirtual()
			a := New(clock, 600, WithDuration(tt.duration), WithSteps(tt.steps))
			if a.Interval() != tt.interval {
				t.Fatalf("Interval() = %v, want %v", a.Interval(), tt.interval)
			}
			if want := tt.interval * time.Duration(tt.steps); a.End() != want {
				t.Errorf("End() = %v, want %v", a.End(), want)
			}

			if f := a.FrameAt(a.End()); !f.Done || f.Value != 600 {
				t.Errorf("FrameAt(End()) = %+v, want done at 600", f)
			}

			a.Start()
			clock.Advance(a.End() - a.Interval())
			if a.Done() {
				t.Errorf("done one tick early at step %d", a.Frame().Step)
			}
			if got := a.FrameAt(clock.Now()); got.Step != a.Frame().Step {
				t.Errorf("FrameAt(%v) step %d, live step %d", clock.Now(), got.Step, a.Frame().Step)
			}
			clock.Advance(a.Interval())
			if !a.Done() || a.Value() != 600 {
				t.Errorf("after End(): step %d value %d, want done at 600", a.Frame().Step, a.Value())
			}
		})
	}
}
