package directory

import (
	"context"
	"database/sql"

	"campus-dispatch/internal/geo"
)

// Postgres is a directory backed by the recipients table: one row per
// reachable identity with its last known location.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a directory backed by the given db.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// ListRecipients returns every recipient row. Rows without a location are
// skipped; they cannot be geofenced.
func (d *Postgres) ListRecipients(ctx context.Context) ([]Recipient, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, lat, lng FROM recipients WHERE lat IS NOT NULL AND lng IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.Point.Lat, &r.Point.Lng); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Upsert adds or moves a recipient.
func (d *Postgres) Upsert(ctx context.Context, id string, p geo.Point) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO recipients (id, lat, lng) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET lat = EXCLUDED.lat, lng = EXCLUDED.lng`,
		id, p.Lat, p.Lng)
	return err
}

var _ RecipientDirectory = (*Postgres)(nil)
