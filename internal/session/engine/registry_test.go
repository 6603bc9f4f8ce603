package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"campus-dispatch/internal/clock"
	"campus-dispatch/internal/geo"
	"campus-dispatch/internal/session/domain"
)

const (
	testStaleness = 60 * time.Second
	testCheckIn   = 10 * time.Minute
)

func newTestRegistry(t *testing.T) (*Registry, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return New(clk, testStaleness, testCheckIn), clk
}

func position(clk *clock.Fake) domain.Position {
	return domain.Position{
		Point:      geo.Point{Lat: 12.9716, Lng: 77.5946},
		AccuracyM:  8,
		RecordedAt: clk.Now(),
	}
}

func TestActivate_CreatesPendingSession(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, err := r.Activate(domain.KindSOS, "user-1", position(clk))
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if s.Status != domain.StatusPending {
		t.Errorf("Status = %q, want pending", s.Status)
	}
	if s.ID == "" {
		t.Error("session ID not assigned")
	}
	if s.CheckInDeadline != nil {
		t.Error("SOS session should not have a check-in deadline")
	}
}

func TestActivate_FriendWalkGetsCheckInDeadline(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, err := r.Activate(domain.KindFriendWalk, "user-1", position(clk))
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if s.CheckInDeadline == nil {
		t.Fatal("FriendWalk session missing check-in deadline")
	}
	if want := clk.Now().Add(testCheckIn); !s.CheckInDeadline.Equal(want) {
		t.Errorf("CheckInDeadline = %v, want %v", s.CheckInDeadline, want)
	}
}

func TestActivate_DuplicateActiveSession(t *testing.T) {
	r, clk := newTestRegistry(t)
	if _, err := r.Activate(domain.KindSOS, "user-1", position(clk)); err != nil {
		t.Fatalf("first Activate: %v", err)
	}
	if _, err := r.Activate(domain.KindSOS, "user-1", position(clk)); !errors.Is(err, ErrDuplicateActiveSession) {
		t.Errorf("second Activate err = %v, want ErrDuplicateActiveSession", err)
	}
	// A different kind for the same requester is allowed.
	if _, err := r.Activate(domain.KindFriendWalk, "user-1", position(clk)); err != nil {
		t.Errorf("FriendWalk Activate for same requester: %v", err)
	}
}

func TestActivate_AllowedAgainAfterEnd(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	if _, err := r.End(s.ID, "resolved by operator"); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := r.Activate(domain.KindSOS, "user-1", position(clk)); err != nil {
		t.Errorf("Activate after End: %v", err)
	}
}

func TestActivate_Validation(t *testing.T) {
	r, clk := newTestRegistry(t)
	if _, err := r.Activate(domain.Kind("carpool"), "user-1", position(clk)); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("unknown kind err = %v, want ErrInvalidKind", err)
	}
	bad := position(clk)
	bad.Point.Lat = 120
	if _, err := r.Activate(domain.KindSOS, "user-1", bad); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("bad position err = %v, want ErrInvalidPosition", err)
	}
}

func TestAcknowledge_Idempotent(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))

	got, changed, err := r.Acknowledge(s.ID)
	if err != nil || !changed {
		t.Fatalf("Acknowledge = (%v, %v), want changed transition", got, err)
	}
	if got.Status != domain.StatusActive {
		t.Errorf("Status = %q, want active", got.Status)
	}

	_, changed, err = r.Acknowledge(s.ID)
	if err != nil {
		t.Fatalf("second Acknowledge: %v", err)
	}
	if changed {
		t.Error("second Acknowledge should be a no-op")
	}
}

func TestUpdatePosition_MonotonicTimestamps(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	r.Acknowledge(s.ID)

	clk.Advance(10 * time.Second)
	fresh := position(clk)
	fresh.Point.Lat += 0.001
	got, _, err := r.UpdatePosition(s.ID, fresh)
	if err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if got.Position.Point.Lat != fresh.Point.Lat {
		t.Errorf("position not updated: %+v", got.Position)
	}

	// An out-of-order timestamp is rejected and the state is unchanged.
	stale := fresh
	stale.RecordedAt = fresh.RecordedAt.Add(-time.Second)
	stale.Point.Lat += 1
	if _, _, err := r.UpdatePosition(s.ID, stale); !errors.Is(err, ErrStaleUpdate) {
		t.Fatalf("stale update err = %v, want ErrStaleUpdate", err)
	}
	after, _ := r.Get(s.ID)
	if after.Position.Point.Lat != fresh.Point.Lat {
		t.Error("rejected update must not change recorded position")
	}
	if !after.Position.RecordedAt.Equal(fresh.RecordedAt) {
		t.Error("lastPositionTime moved backward")
	}
}

func TestSweep_MarksStaleSessionUrgent(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	r.Acknowledge(s.ID)

	clk.Advance(testStaleness + time.Second)
	alerts := r.Sweep(clk.Now())
	if len(alerts) != 1 {
		t.Fatalf("Sweep produced %d alerts, want 1", len(alerts))
	}
	if alerts[0].Reason != domain.UrgentStalePosition {
		t.Errorf("alert reason = %q, want stale_position", alerts[0].Reason)
	}
	got, _ := r.Get(s.ID)
	if got.Status != domain.StatusUrgent {
		t.Errorf("Status = %q, want urgent", got.Status)
	}

	// Repeated sweeps over an already-urgent session are no-ops.
	if again := r.Sweep(clk.Now()); len(again) != 0 {
		t.Errorf("second Sweep produced %d alerts, want 0", len(again))
	}
}

func TestSweep_PendingSessionNotStaleChecked(t *testing.T) {
	r, clk := newTestRegistry(t)
	r.Activate(domain.KindSOS, "user-1", position(clk))
	clk.Advance(testStaleness + time.Second)
	if alerts := r.Sweep(clk.Now()); len(alerts) != 0 {
		t.Errorf("pending session swept to urgent: %d alerts", len(alerts))
	}
}

func TestUpdatePosition_RecoversFromStalenessUrgency(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	r.Acknowledge(s.ID)

	clk.Advance(testStaleness + time.Second)
	r.Sweep(clk.Now())

	fresh := position(clk)
	got, recovered, err := r.UpdatePosition(s.ID, fresh)
	if err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if !recovered {
		t.Error("fresh position should recover staleness urgency")
	}
	if got.Status != domain.StatusActive {
		t.Errorf("Status = %q, want active", got.Status)
	}
}

func TestUpdatePosition_DoesNotRecoverExplicitEscalation(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	r.Acknowledge(s.ID)
	if _, _, err := r.Escalate(s.ID); err != nil {
		t.Fatalf("Escalate: %v", err)
	}

	clk.Advance(time.Second)
	got, recovered, err := r.UpdatePosition(s.ID, position(clk))
	if err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if recovered || got.Status != domain.StatusUrgent {
		t.Errorf("escalated session recovered to %q on position update", got.Status)
	}
}

func TestEscalate_Idempotent(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))

	_, changed, err := r.Escalate(s.ID)
	if err != nil || !changed {
		t.Fatalf("Escalate = (changed=%v, err=%v), want transition", changed, err)
	}
	_, changed, err = r.Escalate(s.ID)
	if err != nil {
		t.Fatalf("second Escalate: %v", err)
	}
	if changed {
		t.Error("second Escalate should be a no-op")
	}
}

func TestWatch_NeverContainsOwner(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))

	if _, err := r.Watch(s.ID, "user-1"); !errors.Is(err, ErrWatcherIsOwner) {
		t.Errorf("owner watch err = %v, want ErrWatcherIsOwner", err)
	}
	got, err := r.Watch(s.ID, "friend-1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if len(got.Watchers) != 1 || got.Watchers[0] != "friend-1" {
		t.Errorf("Watchers = %v, want [friend-1]", got.Watchers)
	}
	// Duplicate ack is a set no-op.
	got, _ = r.Watch(s.ID, "friend-1")
	if len(got.Watchers) != 1 {
		t.Errorf("duplicate watcher appended: %v", got.Watchers)
	}
}

func TestOnTheWay_AppendsResponder(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	got, err := r.OnTheWay(s.ID, "responder-1", 4*time.Minute)
	if err != nil {
		t.Fatalf("OnTheWay: %v", err)
	}
	if len(got.Responders) != 1 || got.Responders[0].ETA != 4*time.Minute {
		t.Errorf("Responders = %v, want one with 4m ETA", got.Responders)
	}
}

func TestCheckIn_ResetsDeadline(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindFriendWalk, "user-1", position(clk))

	clk.Advance(5 * time.Minute)
	got, err := r.CheckIn(s.ID)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if want := clk.Now().Add(testCheckIn); !got.CheckInDeadline.Equal(want) {
		t.Errorf("CheckInDeadline = %v, want %v", got.CheckInDeadline, want)
	}
}

func TestCheckIn_WrongKind(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	if _, err := r.CheckIn(s.ID); !errors.Is(err, ErrWrongSessionKind) {
		t.Errorf("CheckIn on SOS err = %v, want ErrWrongSessionKind", err)
	}
}

func TestSweep_CheckInMissed(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindFriendWalk, "user-1", position(clk))
	r.Acknowledge(s.ID)

	// Keep the position fresh so only the deadline can trigger urgency.
	clk.Advance(testCheckIn - time.Minute)
	r.UpdatePosition(s.ID, position(clk))
	r.Sweep(clk.Now())

	clk.Advance(time.Minute + time.Second)
	fresh := position(clk)
	r.UpdatePosition(s.ID, fresh)
	alerts := r.Sweep(clk.Now())
	if len(alerts) != 1 {
		t.Fatalf("Sweep produced %d alerts, want 1", len(alerts))
	}
	if alerts[0].Reason != domain.UrgentCheckInMissed {
		t.Errorf("alert reason = %q, want checkin_missed", alerts[0].Reason)
	}
	got, _ := r.Get(s.ID)
	if got.Status != domain.StatusUrgent {
		t.Errorf("Status = %q, want urgent", got.Status)
	}
}

func TestEnd_Terminal(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))

	got, err := r.End(s.ID, "requester safe")
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if got.Status != domain.StatusResolved || got.EndedAt == nil {
		t.Errorf("End result = %+v, want resolved with EndedAt", got)
	}
	if _, err := r.End(s.ID, "again"); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("second End err = %v, want ErrAlreadyResolved", err)
	}
}

func TestEnd_StatusNeverRegresses(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	r.End(s.ID, "done")

	clk.Advance(time.Second)
	if _, _, err := r.UpdatePosition(s.ID, position(clk)); !errors.Is(err, ErrTerminalState) {
		t.Errorf("UpdatePosition after End err = %v, want ErrTerminalState", err)
	}
	if _, _, err := r.Acknowledge(s.ID); !errors.Is(err, ErrTerminalState) {
		t.Errorf("Acknowledge after End err = %v, want ErrTerminalState", err)
	}
	if _, _, err := r.Escalate(s.ID); !errors.Is(err, ErrTerminalState) {
		t.Errorf("Escalate after End err = %v, want ErrTerminalState", err)
	}
	got, _ := r.Get(s.ID)
	if got.Status != domain.StatusResolved {
		t.Errorf("Status = %q, want resolved", got.Status)
	}
}

func TestRemove_OnlyTerminalSessions(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))

	r.Remove(s.ID)
	if _, err := r.Get(s.ID); err != nil {
		t.Error("Remove dropped a non-terminal session")
	}

	r.End(s.ID, "done")
	r.Remove(s.ID)
	if _, err := r.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentPositionUpdates_SameSession(t *testing.T) {
	r, clk := newTestRegistry(t)
	s, _ := r.Activate(domain.KindSOS, "user-1", position(clk))
	r.Acknowledge(s.ID)

	base := clk.Now()
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pos := domain.Position{
				Point:      geo.Point{Lat: 12.9, Lng: 77.5},
				RecordedAt: base.Add(time.Duration(i) * time.Second),
			}
			// Out-of-order arrivals fail with ErrStaleUpdate; that is benign.
			r.UpdatePosition(s.ID, pos)
		}(i)
	}
	wg.Wait()

	got, _ := r.Get(s.ID)
	if !got.Position.RecordedAt.After(base) {
		t.Error("no update landed")
	}
	// The surviving timestamp must be the max of the applied ones.
	final := got.Position.RecordedAt
	if _, _, err := r.UpdatePosition(s.ID, domain.Position{Point: geo.Point{}, RecordedAt: final}); !errors.Is(err, ErrStaleUpdate) {
		t.Errorf("equal timestamp accepted after concurrent updates: %v", err)
	}
}

func TestConcurrentActivate_DistinctRequesters(t *testing.T) {
	r, clk := newTestRegistry(t)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Activate(domain.KindSOS, string(rune('a'+i)), position(clk))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Activate: %v", err)
		}
	}
	if got := len(r.List()); got != 20 {
		t.Errorf("List returned %d sessions, want 20", got)
	}
}
