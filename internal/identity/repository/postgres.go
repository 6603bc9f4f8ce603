package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-dispatch/internal/identity/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an operator store backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const operatorColumns = `id, email, name, role, password_hash, status, created_at, updated_at`

// GetByID returns the operator for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE id = $1`, id)
	return scanOperator(row)
}

// GetByEmail returns the operator for email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE email = $1`, email)
	return scanOperator(row)
}

// Create persists the operator. The operator must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Operator) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operators (`+operatorColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Email, o.Name, string(o.Role), o.PasswordHash, string(o.Status),
		o.CreatedAt, o.UpdatedAt)
	return err
}

func scanOperator(row *sql.Row) (*domain.Operator, error) {
	var (
		o      domain.Operator
		role   string
		status string
	)
	err := row.Scan(&o.ID, &o.Email, &o.Name, &role, &o.PasswordHash, &status,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Role = domain.Role(role)
	o.Status = domain.Status(status)
	return &o, nil
}
