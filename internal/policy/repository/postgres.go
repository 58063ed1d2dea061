package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/policy/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an access policy repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the policy for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AccessPolicy, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, team_id, name, rules, enabled, created_at FROM team_access_policies WHERE id = $1`, id)
	var p domain.AccessPolicy
	if err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Rules, &p.Enabled, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetEnabledByTeam returns the enabled policies for the team in creation order.
func (r *PostgresRepository) GetEnabledByTeam(ctx context.Context, teamID string) ([]*domain.AccessPolicy, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, team_id, name, rules, enabled, created_at FROM team_access_policies
		 WHERE team_id = $1 AND enabled ORDER BY created_at`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AccessPolicy
	for rows.Next() {
		var p domain.AccessPolicy
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Rules, &p.Enabled, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Create persists the policy. The policy must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.AccessPolicy) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_access_policies (id, team_id, name, rules, enabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.TeamID, p.Name, p.Rules, p.Enabled, p.CreatedAt)
	return err
}

// Delete removes the policy row. Idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM team_access_policies WHERE id = $1`, id)
	return err
}
