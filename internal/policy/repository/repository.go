package repository

import (
	"context"

	"campus-dispatch/internal/policy/domain"
)

// Repository defines persistence for routing policies.
type Repository interface {
	GetEnabledPolicies(ctx context.Context) ([]*domain.Policy, error)
	Create(ctx context.Context, p *domain.Policy) error
}
