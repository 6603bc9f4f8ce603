package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-dispatch/internal/geo"
	"campus-dispatch/internal/report/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a report store backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const reportColumns = `id, category, summary, lat, lng, reporter_id, anonymous,
	status, priority, routed_to, assignee, media_count, created_at`

// GetByID returns the report for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rep, nil
}

// ListByTeam returns reports routed to the team, newest first, paginated by
// limit and offset.
func (r *PostgresRepository) ListByTeam(ctx context.Context, team domain.Team, limit, offset int32) ([]*domain.Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports
		 WHERE routed_to = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(team), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Save upserts the report. The report must have ID set.
func (r *PostgresRepository) Save(ctx context.Context, rep *domain.Report) error {
	var lat, lng sql.NullFloat64
	if rep.Location != nil {
		lat = sql.NullFloat64{Float64: rep.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: rep.Location.Lng, Valid: true}
	}
	reporter := sql.NullString{String: rep.ReporterID, Valid: rep.ReporterID != ""}
	assignee := sql.NullString{String: rep.Assignee, Valid: rep.Assignee != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status, priority = EXCLUDED.priority,
		   assignee = EXCLUDED.assignee`,
		rep.ID, string(rep.Category), rep.Summary, lat, lng, reporter, rep.Anonymous,
		string(rep.Status), string(rep.Priority), string(rep.RoutedTo),
		assignee, rep.MediaCount, rep.CreatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var (
		rep      domain.Report
		category string
		status   string
		priority string
		team     string
		lat, lng sql.NullFloat64
		reporter sql.NullString
		assignee sql.NullString
	)
	err := row.Scan(&rep.ID, &category, &rep.Summary, &lat, &lng, &reporter,
		&rep.Anonymous, &status, &priority, &team, &assignee,
		&rep.MediaCount, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	rep.Category = domain.Category(category)
	rep.Status = domain.Status(status)
	rep.Priority = domain.Priority(priority)
	rep.RoutedTo = domain.Team(team)
	if lat.Valid && lng.Valid {
		rep.Location = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	if reporter.Valid {
		rep.ReporterID = reporter.String
	}
	if assignee.Valid {
		rep.Assignee = assignee.String
	}
	return &rep, nil
}
