package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"campus-dispatch/internal/broadcast/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a broadcast store backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const broadcastColumns = `id, message, lat, lng, radius_m, issued_by, issued_at,
	recipients, recipient_count`

// GetByID returns the broadcast for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Broadcast, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+broadcastColumns+` FROM broadcasts WHERE id = $1`, id)
	b, err := scanBroadcast(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// List returns issued broadcasts, newest first, paginated by limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.Broadcast, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+broadcastColumns+` FROM broadcasts
		 ORDER BY issued_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Broadcast
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Save inserts the broadcast. Broadcasts are immutable once issued, so a
// conflicting ID is an error.
func (r *PostgresRepository) Save(ctx context.Context, b *domain.Broadcast) error {
	recipients, err := json.Marshal(b.Recipients)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO broadcasts (`+broadcastColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.ID, b.Message, b.Center.Lat, b.Center.Lng, b.RadiusM,
		b.IssuedBy, b.IssuedAt, recipients, b.RecipientCount)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBroadcast(row rowScanner) (*domain.Broadcast, error) {
	var (
		b          domain.Broadcast
		recipients []byte
	)
	err := row.Scan(&b.ID, &b.Message, &b.Center.Lat, &b.Center.Lng, &b.RadiusM,
		&b.IssuedBy, &b.IssuedAt, &recipients, &b.RecipientCount)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recipients, &b.Recipients); err != nil {
		return nil, err
	}
	return &b, nil
}
