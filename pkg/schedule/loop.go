package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a wall-clock event loop. Timers may be created from any goroutine,
// but their callbacks only run inside [Loop.Run], one at a time.
type Loop struct {
	start time.Time
	queue chan func()
	done  chan struct{}
	once  sync.Once

	mu     sync.Mutex
	timers map[*loopTimer]struct{}
}

// NewLoop creates an event loop. Callbacks are queued until Run is called.
func NewLoop() *Loop {
	return &Loop{
		start:  time.Now(),
		queue:  make(chan func(), 64),
		done:   make(chan struct{}),
		timers: make(map[*loopTimer]struct{}),
	}
}

// Run executes queued callbacks until ctx is cancelled. On return every
// pending timer is stopped and further posts are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn to run on the loop. It reports false if the loop has shut
// down.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Now returns the wall-clock time elapsed since the loop was created.
func (l *Loop) Now() time.Duration { return time.Since(l.start) }

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := l.track(&loopTimer{loop: l})
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if !t.done.CompareAndSwap(false, true) {
				return
			}
			l.untrack(t)
			fn()
		})
	})
	return t
}

// Every runs fn on the loop every d until stopped.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	t := l.track(&loopTimer{loop: l, quit: make(chan struct{})})
	ticker := time.NewTicker(normalizeInterval(d))
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if t.done.Load() {
						return
					}
					fn()
				})
			case <-t.quit:
				return
			case <-l.done:
				return
			}
		}
	}()
	return t
}

func (l *Loop) track(t *loopTimer) *loopTimer {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timers[t] = struct{}{}
	return t
}

func (l *Loop) untrack(t *loopTimer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.timers, t)
}

func (l *Loop) shutdown() {
	l.once.Do(func() {
		close(l.done)
		l.mu.Lock()
		timers := make([]*loopTimer, 0, len(l.timers))
		for t := range l.timers {
			timers = append(timers, t)
		}
		l.mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	})
}

// Pending returns the number of live timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

type loopTimer struct {
	loop *Loop
	done atomic.Bool
	quit chan struct{} // recurring

	mu    sync.Mutex
	timer *time.Timer // one-shot
}

// Stop cancels the timer.
func (t *loopTimer) Stop() bool {
	if !t.done.CompareAndSwap(false, true) {
		return false
	}
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
	if t.quit != nil {
		close(t.quit)
	}
	t.loop.untrack(t)
	return true
}
