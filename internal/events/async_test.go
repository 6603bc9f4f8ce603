package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockSink implements Sink for tests.
type mockSink struct {
	mu      sync.Mutex
	events  []*Event
	emitErr error
	delay   time.Duration
}

var _ Sink = (*mockSink)(nil)

func (m *mockSink) Emit(ctx context.Context, event *Event) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockSink) getEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilSink(t *testing.T) {
	event := New(TypeStatusChanged, "session", "s-1", "", nil, time.Now().UTC())
	// Should not panic.
	EmitAsync(nil, context.Background(), event)
}

func TestEmitAsync_NilEvent(t *testing.T) {
	sink := &mockSink{}
	// Should not panic.
	EmitAsync(sink, context.Background(), nil)
	time.Sleep(20 * time.Millisecond)
	if got := len(sink.getEvents()); got != 0 {
		t.Errorf("emitted %d events for nil event, want 0", got)
	}
}

func TestEmitAsync_DeliversEvent(t *testing.T) {
	sink := &mockSink{}
	event := New(TypeReportCreated, "report", "r-1", "u-1", nil, time.Now().UTC())
	EmitAsync(sink, context.Background(), event)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(sink.getEvents()) == 1 {
			if got := sink.getEvents()[0]; got.Type != TypeReportCreated || got.EntityID != "r-1" {
				t.Errorf("delivered event = %+v, want report_created/r-1", got)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("event not delivered within 1s")
}

func TestEmitAsync_DoesNotBlockCaller(t *testing.T) {
	sink := &mockSink{delay: 200 * time.Millisecond}
	start := time.Now()
	EmitAsync(sink, context.Background(), New(TypeSessionStale, "session", "s-1", "", nil, time.Now().UTC()))
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("EmitAsync blocked for %v", elapsed)
	}
}

func TestEmitAsync_ErrorIsSwallowed(t *testing.T) {
	sink := &mockSink{emitErr: errors.New("broker down")}
	// Errors are logged, not surfaced; the call must not panic.
	EmitAsync(sink, context.Background(), New(TypeBroadcastIssued, "broadcast", "b-1", "op-1", nil, time.Now().UTC()))
	time.Sleep(20 * time.Millisecond)
}

func TestFanout_ForwardsToAllSinks(t *testing.T) {
	a := &mockSink{}
	b := &mockSink{emitErr: errors.New("sink b failed")}
	c := &mockSink{}
	f := NewFanout(a, nil, b, c)

	err := f.Emit(context.Background(), New(TypePostEscalated, "post", "p-1", "", nil, time.Now().UTC()))
	if err == nil {
		t.Error("Emit should return first sink error")
	}
	for i, s := range []*mockSink{a, b, c} {
		if len(s.getEvents()) != 1 {
			t.Errorf("sink %d received %d events, want 1", i, len(s.getEvents()))
		}
	}
}

func TestRecorder_ByType(t *testing.T) {
	r := NewRecorder()
	_ = r.Emit(context.Background(), New(TypeSessionStale, "session", "s-1", "", nil, time.Now().UTC()))
	_ = r.Emit(context.Background(), New(TypeStatusChanged, "session", "s-1", "", nil, time.Now().UTC()))
	_ = r.Emit(context.Background(), New(TypeSessionStale, "session", "s-2", "", nil, time.Now().UTC()))

	if got := len(r.ByType(TypeSessionStale)); got != 2 {
		t.Errorf("ByType(session_stale) = %d events, want 2", got)
	}
	if got := len(r.Events()); got != 3 {
		t.Errorf("Events() = %d, want 3", got)
	}
}
