package repository

import (
	"context"

	"campus-dispatch/internal/broadcast/domain"
)

// Repository defines persistence for issued broadcasts. Broadcasts are
// immutable; Save is insert-only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Broadcast, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.Broadcast, error)
	Save(ctx context.Context, b *domain.Broadcast) error
}
