package repository

import (
	"context"

	"campus-dispatch/internal/session/domain"
)

// Repository defines persistence for resolved session archives. The live
// registry is the source of truth while a session runs; a session is archived
// exactly once, when it ends.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByRequester(ctx context.Context, requesterID string, limit, offset int32) ([]*domain.Session, error)
	Archive(ctx context.Context, s *domain.Session) error
}
