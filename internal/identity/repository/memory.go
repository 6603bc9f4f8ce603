package repository

import (
	"context"
	"strings"
	"sync"

	"campus-dispatch/internal/identity/domain"
)

// InMemory keeps operators in process memory. Used when no database is
// configured; accounts do not survive a restart.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Operator
	byEmail map[string]*domain.Operator
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[string]*domain.Operator),
		byEmail: make(map[string]*domain.Operator),
	}
}

func (r *InMemory) GetByID(_ context.Context, id string) (*domain.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o := r.byID[id]
	if o == nil {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *InMemory) GetByEmail(_ context.Context, email string) (*domain.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o := r.byEmail[strings.ToLower(email)]
	if o == nil {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *InMemory) Create(_ context.Context, o *domain.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.byID[cp.ID] = &cp
	r.byEmail[strings.ToLower(cp.Email)] = &cp
	return nil
}

var _ Repository = (*InMemory)(nil)
