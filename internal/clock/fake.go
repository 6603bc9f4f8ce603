package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests. Ticks fire synchronously from
// Advance, so tests observe sweep effects without sleeping.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	ticks []*fakeTick
}

type fakeTick struct {
	interval time.Duration
	next     time.Time
	fn       func(now time.Time)
	stopped  bool
}

// NewFake returns a Fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start.UTC()}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// ScheduleTick registers fn to fire every interval of fake time.
func (f *Fake) ScheduleTick(interval time.Duration, fn func(now time.Time)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTick{interval: interval, next: f.now.Add(interval), fn: fn}
	f.ticks = append(f.ticks, t)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		t.stopped = true
	}
}

// Advance moves the fake clock forward by d, firing due ticks in order.
// Tick callbacks run without the clock lock held so they may call Now.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()
	for {
		f.mu.Lock()
		var due *fakeTick
		earliest := target.Add(time.Nanosecond)
		for _, t := range f.ticks {
			if t.stopped {
				continue
			}
			if !t.next.After(target) && t.next.Before(earliest) {
				due = t
				earliest = t.next
			}
		}
		if due == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = due.next
		due.next = due.next.Add(due.interval)
		fn := due.fn
		now := f.now
		f.mu.Unlock()
		fn(now)
	}
}
