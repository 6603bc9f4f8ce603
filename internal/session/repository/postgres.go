package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"campus-dispatch/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session archive backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, kind, requester_id, status, urgent_reason,
	lat, lng, accuracy_m, position_at, started_at,
	checkin_deadline, ended_at, end_reason, watchers, responders, messages`

// GetByID returns the archived session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListByRequester returns archived sessions for the requester, newest first,
// paginated by limit and offset.
func (r *PostgresRepository) ListByRequester(ctx context.Context, requesterID string, limit, offset int32) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE requester_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`,
		requesterID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Archive persists a resolved session. The session must be terminal and have
// ID set. Archiving the same ID twice overwrites the earlier row.
func (r *PostgresRepository) Archive(ctx context.Context, s *domain.Session) error {
	watchers, err := json.Marshal(s.Watchers)
	if err != nil {
		return err
	}
	responders, err := json.Marshal(s.Responders)
	if err != nil {
		return err
	}
	messages, err := json.Marshal(s.Messages)
	if err != nil {
		return err
	}
	deadline := nullTime(s.CheckInDeadline)
	ended := nullTime(s.EndedAt)
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status, urgent_reason = EXCLUDED.urgent_reason,
		   lat = EXCLUDED.lat, lng = EXCLUDED.lng, accuracy_m = EXCLUDED.accuracy_m,
		   position_at = EXCLUDED.position_at, checkin_deadline = EXCLUDED.checkin_deadline,
		   ended_at = EXCLUDED.ended_at, end_reason = EXCLUDED.end_reason,
		   watchers = EXCLUDED.watchers, responders = EXCLUDED.responders,
		   messages = EXCLUDED.messages`,
		s.ID, string(s.Kind), s.RequesterID, string(s.Status), string(s.UrgentReason),
		s.Position.Point.Lat, s.Position.Point.Lng, s.Position.AccuracyM,
		s.Position.RecordedAt, s.StartedAt,
		deadline, ended, s.EndReason, watchers, responders, messages)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s          domain.Session
		kind       string
		status     string
		reason     string
		deadline   sql.NullTime
		ended      sql.NullTime
		watchers   []byte
		responders []byte
		messages   []byte
	)
	err := row.Scan(&s.ID, &kind, &s.RequesterID, &status, &reason,
		&s.Position.Point.Lat, &s.Position.Point.Lng, &s.Position.AccuracyM,
		&s.Position.RecordedAt, &s.StartedAt,
		&deadline, &ended, &s.EndReason, &watchers, &responders, &messages)
	if err != nil {
		return nil, err
	}
	s.Kind = domain.Kind(kind)
	s.Status = domain.Status(status)
	s.UrgentReason = domain.UrgentReason(reason)
	if deadline.Valid {
		d := deadline.Time
		s.CheckInDeadline = &d
	}
	if ended.Valid {
		e := ended.Time
		s.EndedAt = &e
	}
	if err := json.Unmarshal(watchers, &s.Watchers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(responders, &s.Responders); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(messages, &s.Messages); err != nil {
		return nil, err
	}
	return &s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
