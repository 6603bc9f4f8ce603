package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"campus-dispatch/internal/community/domain"
	"campus-dispatch/internal/geo"
	reportdomain "campus-dispatch/internal/report/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a post store backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const postColumns = `id, author_id, category, content, lat, lng, votes,
	escalation_status, threshold, report_id, created_at`

// GetByID returns the post for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM community_posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListByAuthor returns posts by the author, newest first, paginated by limit
// and offset.
func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int32) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM community_posts
		 WHERE author_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		authorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Save upserts the post. The post must have ID set.
func (r *PostgresRepository) Save(ctx context.Context, p *domain.Post) error {
	votes, err := json.Marshal(p.Votes)
	if err != nil {
		return err
	}
	var lat, lng sql.NullFloat64
	if p.Location != nil {
		lat = sql.NullFloat64{Float64: p.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: p.Location.Lng, Valid: true}
	}
	reportID := sql.NullString{String: p.ReportID, Valid: p.ReportID != ""}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO community_posts (`+postColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   votes = EXCLUDED.votes, escalation_status = EXCLUDED.escalation_status,
		   report_id = EXCLUDED.report_id`,
		p.ID, p.AuthorID, string(p.Category), p.Content, lat, lng, votes,
		string(p.EscalationStatus), p.Threshold, reportID, p.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		p        domain.Post
		category string
		status   string
		lat, lng sql.NullFloat64
		votes    []byte
		reportID sql.NullString
	)
	err := row.Scan(&p.ID, &p.AuthorID, &category, &p.Content, &lat, &lng,
		&votes, &status, &p.Threshold, &reportID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Category = reportdomain.Category(category)
	p.EscalationStatus = domain.EscalationStatus(status)
	if lat.Valid && lng.Valid {
		p.Location = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	if reportID.Valid {
		p.ReportID = reportID.String
	}
	if err := json.Unmarshal(votes, &p.Votes); err != nil {
		return nil, err
	}
	return &p, nil
}
