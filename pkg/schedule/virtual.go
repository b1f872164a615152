package schedule

import "time"

// Virtual is a manually advanced scheduler. Time only moves inside
// [Virtual.Advance], and callbacks run synchronously on the caller's
// goroutine in deadline order; callbacks due at the same instant run in the
// order they were scheduled.
//
// Virtual is not safe for concurrent use.
type Virtual struct {
	now     time.Duration
	seq     uint64
	pending []*virtualTimer
}

type virtualTimer struct {
	clock *Virtual
	at    time.Duration
	every time.Duration
	seq   uint64
	fn    func()
}

// NewVirtual creates a virtual clock positioned at zero.
func NewVirtual() *Virtual {
	return &Virtual{}
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Duration { return v.now }

// AfterFunc schedules fn to run once d after the current virtual time.
// Negative durations are treated as zero.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	return v.add(v.now+d, 0, fn)
}

// Every schedules fn to run every d, starting d from now.
func (v *Virtual) Every(d time.Duration, fn func()) Timer {
	d = normalizeInterval(d)
	return v.add(v.now+d, d, fn)
}

// Pending returns the number of scheduled timers.
func (v *Virtual) Pending() int { return len(v.pending) }

// Advance moves the clock forward by d, running every callback whose
// deadline falls inside the window. Callbacks may schedule or stop other
// timers; newly scheduled timers that fall inside the window also run.
func (v *Virtual) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	v.AdvanceTo(v.now + d)
}

// AdvanceTo moves the clock to the absolute virtual time t. It is a no-op if
// t is in the past.
func (v *Virtual) AdvanceTo(t time.Duration) {
	for {
		next := v.next(t)
		if next == nil {
			break
		}
		v.now = next.at
		if next.every > 0 {
			next.at += next.every
			next.seq = v.nextSeq()
		} else {
			v.remove(next)
		}
		next.fn()
	}
	if t > v.now {
		v.now = t
	}
}

func (v *Virtual) add(at, every time.Duration, fn func()) *virtualTimer {
	t := &virtualTimer{clock: v, at: at, every: every, seq: v.nextSeq(), fn: fn}
	v.pending = append(v.pending, t)
	return t
}

func (v *Virtual) nextSeq() uint64 {
	v.seq++
	return v.seq
}

// next returns the earliest pending timer due at or before limit.
func (v *Virtual) next(limit time.Duration) *virtualTimer {
	var best *virtualTimer
	for _, t := range v.pending {
		if t.at > limit {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (v *Virtual) remove(t *virtualTimer) bool {
	for i, p := range v.pending {
		if p == t {
			v.pending = append(v.pending[:i], v.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Stop cancels the timer.
func (t *virtualTimer) Stop() bool {
	return t.clock.remove(t)
}
