// Package domain defines live safety sessions (SOS and FriendWalk) and their states.
package domain

import (
	"time"

	"campus-dispatch/internal/geo"
)

// Kind distinguishes SOS activations from accompanied-walk sessions.
type Kind string

const (
	KindSOS        Kind = "sos"
	KindFriendWalk Kind = "friend_walk"
)

// Valid reports whether k is a known session kind.
func (k Kind) Valid() bool { return k == KindSOS || k == KindFriendWalk }

// Status is the session lifecycle state. Transitions are monotonic except
// urgent → active, which is allowed only when urgency was caused by GPS
// staleness and a fresh position arrives.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusUrgent   Status = "urgent"
	StatusResolved Status = "resolved"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool { return s == StatusResolved }

// UrgentReason records why a session became urgent; staleness-driven urgency
// may recover to active, the others may not.
type UrgentReason string

const (
	UrgentNone          UrgentReason = ""
	UrgentStalePosition UrgentReason = "stale_position"
	UrgentCheckInMissed UrgentReason = "checkin_missed"
	UrgentEscalated     UrgentReason = "escalated"
)

// Position is a GPS fix with accuracy and capture time.
type Position struct {
	Point      geo.Point `json:"point"`
	AccuracyM  float64   `json:"accuracyM"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Responder is a responder commitment with an estimated time of arrival.
type Responder struct {
	ID  string        `json:"id"`
	ETA time.Duration `json:"eta"`
}

// Message is one entry in the session's message log.
type Message struct {
	AuthorID string    `json:"authorId"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

// Session represents one live SOS or FriendWalk activation. The requester is
// the single owner; watchers never include the owner.
type Session struct {
	ID              string
	Kind            Kind
	RequesterID     string
	Position        Position
	StartedAt       time.Time
	Status          Status
	UrgentReason    UrgentReason
	Watchers        []string
	Responders      []Responder
	Messages        []Message
	CheckInDeadline *time.Time // FriendWalk only; nil for SOS
	EndedAt         *time.Time // set on resolve
	EndReason       string
}

// HasWatcher reports whether id is already in the watcher set.
func (s *Session) HasWatcher(id string) bool {
	for _, w := range s.Watchers {
		if w == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share mutable state with the registry.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Watchers = append([]string(nil), s.Watchers...)
	out.Responders = append([]Responder(nil), s.Responders...)
	out.Messages = append([]Message(nil), s.Messages...)
	if s.CheckInDeadline != nil {
		d := *s.CheckInDeadline
		out.CheckInDeadline = &d
	}
	if s.EndedAt != nil {
		e := *s.EndedAt
		out.EndedAt = &e
	}
	return &out
}
