// Package events defines the dispatch core's change events and the Sink
// collaborators consume them through (Kafka, OTel logs, in-process fan-out).
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type identifies a dispatch change event.
type Type string

const (
	TypeSessionStale    Type = "session_stale"
	TypeCheckInMissed   Type = "checkin_missed"
	TypeStatusChanged   Type = "status_changed"
	TypePostEscalated   Type = "post_escalated"
	TypeReportCreated   Type = "report_created"
	TypeBroadcastIssued Type = "broadcast_issued"
)

// Event is a single change event emitted by the dispatch facade.
// Timestamps serialize as RFC 3339 for round-trip fidelity.
type Event struct {
	ID        string          `json:"id"`
	Type      Type            `json:"eventType"`
	Entity    string          `json:"entity"`   // session | report | post | broadcast
	EntityID  string          `json:"entityId"`
	ActorID   string          `json:"actorId,omitempty"` // requester/operator/voter; empty for sweep events
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// New builds an event with a fresh ID and the given timestamp.
func New(t Type, entity, entityID, actorID string, metadata json.RawMessage, at time.Time) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      t,
		Entity:    entity,
		EntityID:  entityID,
		ActorID:   actorID,
		Metadata:  metadata,
		CreatedAt: at,
	}
}

// Sink consumes dispatch events (e.g. Kafka, OTel logs). Callers use it
// best-effort: log and ignore errors.
type Sink interface {
	// Emit sends a single event. Implementations may block briefly; call from
	// a goroutine if needed. Returns an error only on write failure.
	Emit(ctx context.Context, event *Event) error
}
