// Package engine implements geofenced broadcast targeting.
package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"campus-dispatch/internal/broadcast/domain"
	"campus-dispatch/internal/clock"
	"campus-dispatch/internal/directory"
	"campus-dispatch/internal/geo"
)

// Request is the input to Issue.
type Request struct {
	Message  string
	Center   geo.Point
	RadiusM  float64
	IssuedBy string
}

// Engine resolves broadcast audiences by great-circle distance. Out-of-range
// radii are rejected, not clamped, so operator intent stays explicit.
type Engine struct {
	clk        clock.Clock
	dir        directory.RecipientDirectory
	minRadiusM float64
	maxRadiusM float64

	mu     sync.RWMutex
	issued map[string]*domain.Broadcast
}

// New returns a targeting engine over the given recipient directory.
func New(clk clock.Clock, dir directory.RecipientDirectory, minRadiusM, maxRadiusM float64) *Engine {
	return &Engine{
		clk:        clk,
		dir:        dir,
		minRadiusM: minRadiusM,
		maxRadiusM: maxRadiusM,
		issued:     make(map[string]*domain.Broadcast),
	}
}

// ResolveAudience returns the identifiers of every recipient within radiusM
// meters of center, sorted for determinism. Fails with ErrRadiusOutOfRange if
// the radius is outside the configured bounds.
func (e *Engine) ResolveAudience(ctx context.Context, center geo.Point, radiusM float64) ([]string, error) {
	if !center.Valid() {
		return nil, ErrInvalidCenter
	}
	if radiusM < e.minRadiusM || radiusM > e.maxRadiusM {
		return nil, ErrRadiusOutOfRange
	}
	recipients, err := e.dir.ListRecipients(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range recipients {
		if geo.WithinRadius(center, r.Point, radiusM) {
			out = append(out, r.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Issue resolves the audience and records an immutable broadcast.
func (e *Engine) Issue(ctx context.Context, req Request) (*domain.Broadcast, error) {
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	audience, err := e.ResolveAudience(ctx, req.Center, req.RadiusM)
	if err != nil {
		return nil, err
	}
	b := &domain.Broadcast{
		ID:             uuid.New().String(),
		Message:        req.Message,
		Center:         req.Center,
		RadiusM:        req.RadiusM,
		IssuedBy:       req.IssuedBy,
		IssuedAt:       e.clk.Now(),
		Recipients:     audience,
		RecipientCount: len(audience),
	}
	e.mu.Lock()
	e.issued[b.ID] = b
	e.mu.Unlock()
	return b.Clone(), nil
}

// Get returns a copy of an issued broadcast.
func (e *Engine) Get(id string) (*domain.Broadcast, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b := e.issued[id]
	if b == nil {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

// List returns copies of all issued broadcasts.
func (e *Engine) List() []*domain.Broadcast {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*domain.Broadcast, 0, len(e.issued))
	for _, b := range e.issued {
		out = append(out, b.Clone())
	}
	return out
}
