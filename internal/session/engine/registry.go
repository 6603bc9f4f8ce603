// Package engine implements the session registry: the owner of all live
// SOS/FriendWalk sessions and their state machines.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"campus-dispatch/internal/clock"
	"campus-dispatch/internal/session/domain"
)

// Alert is an autonomous transition produced by the liveness sweep.
type Alert struct {
	Session *domain.Session
	Reason  domain.UrgentReason
}

type ownerKey struct {
	requesterID string
	kind        domain.Kind
}

// entry pairs a session with its own mutex. Operations on the same session ID
// serialize on entry.mu (single writer per key); operations on different IDs
// only share the registry map lock briefly.
type entry struct {
	mu sync.Mutex
	s  domain.Session
}

// Registry owns all live sessions. All methods are safe for concurrent use and
// return deep copies; callers never hold a mutable reference into the registry.
type Registry struct {
	clk             clock.Clock
	staleness       time.Duration
	checkInInterval time.Duration

	mu       sync.RWMutex // guards sessions and owner maps, not entry state
	sessions map[string]*entry
	owner    map[ownerKey]string // requester+kind → non-terminal session ID
}

// New returns an empty registry. staleness is the GPS freshness window;
// checkInInterval is the FriendWalk check-in window.
func New(clk clock.Clock, staleness, checkInInterval time.Duration) *Registry {
	return &Registry{
		clk:             clk,
		staleness:       staleness,
		checkInInterval: checkInInterval,
		sessions:        make(map[string]*entry),
		owner:           make(map[ownerKey]string),
	}
}

// Activate creates a session in pending for the requester. Fails with
// ErrDuplicateActiveSession if the requester already owns a non-terminal
// session of the same kind.
func (r *Registry) Activate(kind domain.Kind, requesterID string, pos domain.Position) (*domain.Session, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if !pos.Point.Valid() {
		return nil, ErrInvalidPosition
	}
	now := r.clk.Now()
	if pos.RecordedAt.IsZero() {
		pos.RecordedAt = now
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := ownerKey{requesterID: requesterID, kind: kind}
	if _, exists := r.owner[key]; exists {
		return nil, ErrDuplicateActiveSession
	}

	s := domain.Session{
		ID:          uuid.New().String(),
		Kind:        kind,
		RequesterID: requesterID,
		Position:    pos,
		StartedAt:   now,
		Status:      domain.StatusPending,
	}
	if kind == domain.KindFriendWalk {
		d := now.Add(r.checkInInterval)
		s.CheckInDeadline = &d
	}
	r.sessions[s.ID] = &entry{s: s}
	r.owner[key] = s.ID
	return s.Clone(), nil
}

// lookup returns the entry for id without holding the registry lock.
func (r *Registry) lookup(id string) *entry {
	r.mu.RLock()
	e := r.sessions[id]
	r.mu.RUnlock()
	return e
}

// mutate applies fn to the session under its entry lock and returns a copy.
// fn must not block; it runs with the single-writer lock for this key held.
func (r *Registry) mutate(id string, fn func(*domain.Session) error) (*domain.Session, error) {
	e := r.lookup(id)
	if e == nil {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(&e.s); err != nil {
		return nil, err
	}
	return e.s.Clone(), nil
}

// Acknowledge moves a pending session to active. Idempotent: acknowledging an
// already active or urgent session is a no-op. The returned bool reports
// whether the status changed.
func (r *Registry) Acknowledge(id string) (*domain.Session, bool, error) {
	changed := false
	s, err := r.mutate(id, func(s *domain.Session) error {
		if s.Status.Terminal() {
			return ErrTerminalState
		}
		if s.Status == domain.StatusPending {
			s.Status = domain.StatusActive
			changed = true
		}
		return nil
	})
	return s, changed, err
}

// UpdatePosition records a newer GPS fix. Fails with ErrStaleUpdate if the fix
// is not strictly newer than the recorded one; the session is unchanged. If the
// session was urgent purely due to staleness and the new fix is fresh, it
// transitions back to active (reported via the returned bool).
func (r *Registry) UpdatePosition(id string, pos domain.Position) (*domain.Session, bool, error) {
	if !pos.Point.Valid() {
		return nil, false, ErrInvalidPosition
	}
	recovered := false
	s, err := r.mutate(id, func(s *domain.Session) error {
		if s.Status.Terminal() {
			return ErrTerminalState
		}
		if !pos.RecordedAt.After(s.Position.RecordedAt) {
			return ErrStaleUpdate
		}
		s.Position = pos
		if s.Status == domain.StatusUrgent && s.UrgentReason == domain.UrgentStalePosition &&
			r.clk.Now().Sub(pos.RecordedAt) <= r.staleness {
			s.Status = domain.StatusActive
			s.UrgentReason = domain.UrgentNone
			recovered = true
		}
		return nil
	})
	return s, recovered, err
}

// Watch adds watcherID to the session's watcher set. Append-only; duplicates
// are no-ops. The owner can never watch their own session.
func (r *Registry) Watch(id, watcherID string) (*domain.Session, error) {
	return r.mutate(id, func(s *domain.Session) error {
		if s.Status.Terminal() {
			return ErrTerminalState
		}
		if watcherID == s.RequesterID {
			return ErrWatcherIsOwner
		}
		if !s.HasWatcher(watcherID) {
			s.Watchers = append(s.Watchers, watcherID)
		}
		return nil
	})
}

// OnTheWay appends a responder commitment with an ETA.
func (r *Registry) OnTheWay(id, responderID string, eta time.Duration) (*domain.Session, error) {
	return r.mutate(id, func(s *domain.Session) error {
		if s.Status.Terminal() {
			return ErrTerminalState
		}
		s.Responders = append(s.Responders, domain.Responder{ID: responderID, ETA: eta})
		return nil
	})
}

// PostMessage appends an operator or watcher message to the session log.
func (r *Registry) PostMessage(id, authorID, body string) (*domain.Session, error) {
	return r.mutate(id, func(s *domain.Session) error {
		if s.Status.Terminal() {
			return ErrTerminalState
		}
		s.Messages = append(s.Messages, domain.Message{AuthorID: authorID, Body: body, SentAt: r.clk.Now()})
		return nil
	})
}

// Escalate forces the session to urgent. Idempotent; an explicit escalation is
// never undone by a fresh position update.
func (r *Registry) Escalate(id string) (*domain.Session, bool, error) {
	changed := false
	s, err := r.mutate(id, func(s *domain.Session) error {
		if s.Status.Terminal() {
			return ErrTerminalState
		}
		if s.Status != domain.StatusUrgent {
			s.Status = domain.StatusUrgent
			changed = true
		}
		s.UrgentReason = domain.UrgentEscalated
		return nil
	})
	return s, changed, err
}

// CheckIn resets the FriendWalk check-in deadline forward by the configured
// interval. Fails with ErrWrongSessionKind on SOS sessions.
func (r *Registry) CheckIn(id string) (*domain.Session, error) {
	return r.mutate(id, func(s *domain.Session) error {
		if s.Status.Terminal() {
			return ErrTerminalState
		}
		if s.Kind != domain.KindFriendWalk {
			return ErrWrongSessionKind
		}
		d := r.clk.Now().Add(r.checkInInterval)
		s.CheckInDeadline = &d
		return nil
	})
}

// End resolves the session unconditionally from any non-terminal state. Fails
// with ErrAlreadyResolved if already terminal. A position update racing with
// End either lands before it or fails with ErrTerminalState after it.
func (r *Registry) End(id, reason string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.sessions[id]
	if e == nil {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s.Status.Terminal() {
		return nil, ErrAlreadyResolved
	}
	now := r.clk.Now()
	e.s.Status = domain.StatusResolved
	e.s.EndedAt = &now
	e.s.EndReason = reason
	delete(r.owner, ownerKey{requesterID: e.s.RequesterID, kind: e.s.Kind})
	return e.s.Clone(), nil
}

// Remove drops a terminal session from the registry after it has been
// archived. Non-terminal sessions are never removed.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.sessions[id]
	if e == nil {
		return
	}
	e.mu.Lock()
	terminal := e.s.Status.Terminal()
	e.mu.Unlock()
	if terminal {
		delete(r.sessions, id)
	}
}

// Get returns a copy of the session.
func (r *Registry) Get(id string) (*domain.Session, error) {
	e := r.lookup(id)
	if e == nil {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Clone(), nil
}

// List returns copies of all sessions currently held by the registry.
func (r *Registry) List() []*domain.Session {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()
	out := make([]*domain.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.s.Clone())
		e.mu.Unlock()
	}
	return out
}

// Sweep runs the liveness check over every non-terminal session: an active
// session whose position is older than the staleness window becomes urgent,
// and a FriendWalk session past its check-in deadline becomes urgent. The
// sweep is the only writer that moves a session to urgent without an explicit
// caller. Idempotent: sweeping an already urgent session is a no-op.
func (r *Registry) Sweep(now time.Time) []Alert {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var alerts []Alert
	for _, e := range entries {
		e.mu.Lock()
		s := &e.s
		switch {
		case s.Status.Terminal() || s.Status == domain.StatusUrgent:
			// no-op
		case s.Status == domain.StatusActive && now.Sub(s.Position.RecordedAt) > r.staleness:
			s.Status = domain.StatusUrgent
			s.UrgentReason = domain.UrgentStalePosition
			alerts = append(alerts, Alert{Session: s.Clone(), Reason: domain.UrgentStalePosition})
		case s.Kind == domain.KindFriendWalk && s.CheckInDeadline != nil && now.After(*s.CheckInDeadline):
			s.Status = domain.StatusUrgent
			s.UrgentReason = domain.UrgentCheckInMissed
			alerts = append(alerts, Alert{Session: s.Clone(), Reason: domain.UrgentCheckInMissed})
		}
		e.mu.Unlock()
	}
	return alerts
}
