// Package schedule runs timed callbacks on a single cooperative event loop.
//
// Every animation in synviz (counter ticks, staggered reveals, visibility
// callbacks) is expressed as a callback handed to a [Scheduler]. Callbacks of
// one scheduler never run concurrently, so the objects they mutate need no
// locking as long as they are only touched from scheduler callbacks or from
// the goroutine that drives a [Virtual] clock.
//
// Two implementations are provided:
//
//   - [Loop] runs callbacks against the wall clock on the goroutine that
//     calls [Loop.Run].
//   - [Virtual] advances only when told to, which makes animation sequences
//     reproducible for tests, frame export and the terminal preview.
//
// # Usage
//
//	clock := schedule.NewVirtual()
//	t := clock.Every(100*time.Millisecond, func() { fmt.Println(clock.Now()) })
//	clock.Advance(300 * time.Millisecond) // prints 100ms, 200ms, 300ms
//	t.Stop()
package schedule

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call cancelled a
	// pending timer; it returns false if the timer already fired (one-shot)
	// or was already stopped.
	Stop() bool
}

// Scheduler schedules callbacks on a single event loop.
type Scheduler interface {
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// Every runs fn every d until the returned timer is stopped.
	Every(d time.Duration, fn func()) Timer

	// Now returns the time elapsed since the scheduler was created.
	Now() time.Duration
}

// MinInterval is the shortest period of a recurring timer. Shorter periods
// passed to Every are raised to it.
const MinInterval = time.Millisecond

func normalizeInterval(d time.Duration) time.Duration {
	return max(d, MinInterval)
}
