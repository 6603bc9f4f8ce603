// Package clock abstracts time for the dispatch core so liveness sweeps and
// deadlines can be driven by a fake clock in tests.
package clock

import (
	"context"
	"time"
)

// Clock provides the current time and a periodic tick scheduler.
type Clock interface {
	// Now returns the current UTC time.
	Now() time.Time
	// ScheduleTick invokes fn with the current time every interval until the
	// returned stop function is called. fn runs on a single goroutine; a slow
	// fn delays the next tick rather than overlapping it.
	ScheduleTick(interval time.Duration, fn func(now time.Time)) (stop func())
}

// System is the wall-clock Clock backed by the Go runtime.
type System struct{}

// NewSystem returns a Clock backed by time.Now and time.Ticker.
func NewSystem() *System { return &System{} }

// Now returns the current UTC time.
func (*System) Now() time.Time { return time.Now().UTC() }

// ScheduleTick starts a ticker goroutine that calls fn every interval.
func (s *System) ScheduleTick(interval time.Duration, fn func(now time.Time)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn(s.Now())
			}
		}
	}()
	return cancel
}
