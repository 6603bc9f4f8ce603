package clock

import (
	"testing"
	"time"
)

func TestFake_NowAdvances(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)
	if got := f.Now(); !got.Equal(start) {
		t.Errorf("Now = %v, want %v", got, start)
	}
	f.Advance(90 * time.Second)
	if got := f.Now(); !got.Equal(start.Add(90 * time.Second)) {
		t.Errorf("Now after advance = %v, want %v", got, start.Add(90*time.Second))
	}
}

func TestFake_TickFiresOnSchedule(t *testing.T) {
	f := NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	var fired []time.Time
	stop := f.ScheduleTick(5*time.Second, func(now time.Time) {
		fired = append(fired, now)
	})
	defer stop()

	f.Advance(12 * time.Second)
	if len(fired) != 2 {
		t.Fatalf("fired %d times, want 2", len(fired))
	}
	if want := f.Now().Add(-2 * time.Second); !fired[1].Equal(want) {
		t.Errorf("second tick at %v, want %v", fired[1], want)
	}
}

func TestFake_StoppedTickDoesNotFire(t *testing.T) {
	f := NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	count := 0
	stop := f.ScheduleTick(time.Second, func(time.Time) { count++ })
	f.Advance(3 * time.Second)
	stop()
	f.Advance(3 * time.Second)
	if count != 3 {
		t.Errorf("tick fired %d times after stop, want 3", count)
	}
}

func TestSystem_Now(t *testing.T) {
	c := NewSystem()
	if loc := c.Now().Location(); loc != time.UTC {
		t.Errorf("Now location = %v, want UTC", loc)
	}
}
