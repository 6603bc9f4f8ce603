// Package directory resolves broadcast recipients and their last known
// locations.
package directory

import (
	"context"
	"sync"

	"campus-dispatch/internal/geo"
)

// Recipient is one reachable device or person with a last known location.
type Recipient struct {
	ID    string
	Point geo.Point
}

// RecipientDirectory lists everyone eligible for a geofenced broadcast.
type RecipientDirectory interface {
	ListRecipients(ctx context.Context) ([]Recipient, error)
}

// InMemory is a directory backed by a map, safe for concurrent use. Used by
// tests and the seed tool.
type InMemory struct {
	mu         sync.RWMutex
	recipients map[string]geo.Point
}

// NewInMemory returns an empty in-memory directory.
func NewInMemory() *InMemory {
	return &InMemory{recipients: make(map[string]geo.Point)}
}

// Put adds or moves a recipient.
func (d *InMemory) Put(id string, p geo.Point) {
	d.mu.Lock()
	d.recipients[id] = p
	d.mu.Unlock()
}

// Remove drops a recipient.
func (d *InMemory) Remove(id string) {
	d.mu.Lock()
	delete(d.recipients, id)
	d.mu.Unlock()
}

// ListRecipients returns a snapshot of all recipients.
func (d *InMemory) ListRecipients(ctx context.Context) ([]Recipient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Recipient, 0, len(d.recipients))
	for id, p := range d.recipients {
		out = append(out, Recipient{ID: id, Point: p})
	}
	return out, nil
}

var _ RecipientDirectory = (*InMemory)(nil)
