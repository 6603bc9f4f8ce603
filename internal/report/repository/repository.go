package repository

import (
	"context"

	"campus-dispatch/internal/report/domain"
)

// Repository defines persistence for incident reports. Reports are never
// deleted; resolved reports stay queryable.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	ListByTeam(ctx context.Context, team domain.Team, limit, offset int32) ([]*domain.Report, error)
	Save(ctx context.Context, r *domain.Report) error
}
