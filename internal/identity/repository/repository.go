package repository

import (
	"context"

	"campus-dispatch/internal/identity/domain"
)

// Repository defines persistence for operator accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Operator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
	Create(ctx context.Context, o *domain.Operator) error
}
