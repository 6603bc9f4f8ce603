// Package domain defines community safety posts and their escalation states.
package domain

import (
	"time"

	"campus-dispatch/internal/geo"
	reportdomain "campus-dispatch/internal/report/domain"
)

// Direction is a single voter's stance on a post.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is a known vote direction.
func (d Direction) Valid() bool { return d == DirectionUp || d == DirectionDown }

// EscalationStatus moves only forward: none → pending → escalated or
// rejected. Rejected is terminal; escalated never regresses.
type EscalationStatus string

const (
	EscalationNone      EscalationStatus = "none"
	EscalationPending   EscalationStatus = "pending"
	EscalationEscalated EscalationStatus = "escalated"
	EscalationRejected  EscalationStatus = "rejected"
)

// Settled reports whether the escalation decision can no longer change.
func (s EscalationStatus) Settled() bool {
	return s == EscalationEscalated || s == EscalationRejected
}

// Post is a crowd-visible safety post eligible for escalation into an
// official report. Votes maps voter identity to their latest direction; a
// repeat vote replaces, never accumulates.
type Post struct {
	ID               string
	AuthorID         string
	Category         reportdomain.Category
	Content          string
	Location         *geo.Point
	Votes            map[string]Direction
	EscalationStatus EscalationStatus
	Threshold        int // net votes required for escalation
	ReportID         string
	CreatedAt        time.Time
}

// NetScore is upvotes minus downvotes.
func (p *Post) NetScore() int {
	score := 0
	for _, d := range p.Votes {
		if d == DirectionUp {
			score++
		} else {
			score--
		}
	}
	return score
}

// Clone returns a deep copy so callers never share mutable state with the engine.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	out := *p
	out.Votes = make(map[string]Direction, len(p.Votes))
	for k, v := range p.Votes {
		out.Votes[k] = v
	}
	if p.Location != nil {
		pt := *p.Location
		out.Location = &pt
	}
	return &out
}
