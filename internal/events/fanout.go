package events

import (
	"context"
	"sync"
)

// Fanout forwards each event to every attached sink. Emit returns the first
// error encountered but still attempts all sinks.
type Fanout struct {
	sinks []Sink
}

// NewFanout returns a Sink that forwards to all given sinks. Nil sinks are dropped.
func NewFanout(sinks ...Sink) *Fanout {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Fanout{sinks: out}
}

// Emit forwards the event to every sink.
func (f *Fanout) Emit(ctx context.Context, event *Event) error {
	var first error
	for _, s := range f.sinks {
		if err := s.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder is an in-memory Sink for tests and in-process consumers (UI refresh).
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Emit appends the event.
func (r *Recorder) Emit(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot of recorded events.
func (r *Recorder) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByType returns recorded events of the given type.
func (r *Recorder) ByType(t Type) []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
