package repository

import (
	"context"

	"campus-dispatch/internal/community/domain"
)

// Repository defines persistence for community posts and their vote tallies.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int32) ([]*domain.Post, error)
	Save(ctx context.Context, p *domain.Post) error
}
