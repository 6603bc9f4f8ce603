package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-dispatch/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log store backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, operator_id, action, entity, entity_id, ip, metadata, created_at
		 FROM audit_logs WHERE id = $1`, id)
	a, err := scanAuditLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListByEntity returns audit logs for one entity, newest first, paginated by
// limit and offset.
func (r *PostgresRepository) ListByEntity(ctx context.Context, entity, entityID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, operator_id, action, entity, entity_id, ip, metadata, created_at
		 FROM audit_logs WHERE entity = $1 AND entity_id = $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		entity, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		a, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	operator := sql.NullString{String: a.OperatorID, Valid: a.OperatorID != ""}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, operator_id, action, entity, entity_id, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, operator, a.Action, a.Entity, a.EntityID, a.IP, meta, a.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditLog(row rowScanner) (*domain.AuditLog, error) {
	var (
		a        domain.AuditLog
		operator sql.NullString
		meta     sql.NullString
	)
	err := row.Scan(&a.ID, &operator, &a.Action, &a.Entity, &a.EntityID, &a.IP, &meta, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if operator.Valid {
		a.OperatorID = operator.String
	}
	if meta.Valid {
		a.Metadata = meta.String
	}
	return &a, nil
}
