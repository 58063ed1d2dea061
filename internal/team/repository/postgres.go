package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskhub/backend/internal/team/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a team repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the team for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM teams WHERE id = $1`, id)
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// GetByIDs returns the teams whose ids are in the given set, in id order.
// Missing ids are skipped, not errors.
func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args := buildInQuery(`SELECT id, name, created_at, updated_at FROM teams WHERE id IN (%s) ORDER BY id`, ids)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Create persists the team. The team must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Team) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.CreatedAt, t.UpdatedAt)
	return err
}

// Update persists mutable team fields for the team's ID.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Team) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = $2, updated_at = $3 WHERE id = $1`,
		t.ID, t.Name, t.UpdatedAt)
	return err
}

// Delete removes the team row. Memberships, tasks, and policies cascade at the database level.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	return err
}

// buildInQuery expands the %s in format into $1..$n placeholders for vals.
func buildInQuery(format string, vals []string) (string, []any) {
	args := make([]any, len(vals))
	placeholders := make([]string, len(vals))
	for i, v := range vals {
		args[i] = v
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(format, strings.Join(placeholders, ", ")), args
}
