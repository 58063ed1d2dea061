package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
// The unique constraint on (team_id, user_id) is the concurrency guard: a
// racing double-join surfaces as a constraint violation, not duplicate rows.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByTeamAndUser returns the membership for the given team and user, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTeamAndUser(ctx context.Context, teamID, userID string) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, team_id, user_id, role, created_at FROM team_memberships WHERE team_id = $1 AND user_id = $2`,
		teamID, userID)
	var m domain.Membership
	err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListByTeam returns all memberships for the given team. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, team_id, user_id, role, created_at FROM team_memberships WHERE team_id = $1 ORDER BY created_at`,
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// ListByUser returns all memberships for the given user. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, team_id, user_id, role, created_at FROM team_memberships WHERE user_id = $1 ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// Create persists the membership. The membership must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_memberships (id, team_id, user_id, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.TeamID, m.UserID, string(m.Role), m.CreatedAt)
	return err
}

// UpdateRole sets the role on the membership for (teamID, userID).
func (r *PostgresRepository) UpdateRole(ctx context.Context, teamID, userID string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE team_memberships SET role = $3 WHERE team_id = $1 AND user_id = $2`,
		teamID, userID, string(role))
	return err
}

// Delete removes the membership for (teamID, userID). Idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, teamID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM team_memberships WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	return err
}

// DeleteAllForTeam removes all memberships for the team. Used by team deletion.
func (r *PostgresRepository) DeleteAllForTeam(ctx context.Context, teamID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM team_memberships WHERE team_id = $1`, teamID)
	return err
}

func scanMemberships(rows *sql.Rows) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
