package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/task/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, title, description, status, creator_id, team_id, created_at, updated_at`

// GetByID returns the task for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByCreator returns all tasks created by the given user.
func (r *PostgresRepository) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE creator_id = $1 ORDER BY created_at DESC`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListByTeam returns all tasks owned by the given team.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE team_id = $1 ORDER BY created_at DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// SearchByTitle returns the creator's tasks whose title contains keyword, case-insensitively.
func (r *PostgresRepository) SearchByTitle(ctx context.Context, creatorID, keyword string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE creator_id = $1 AND title ILIKE '%' || $2 || '%' ORDER BY created_at DESC`,
		creatorID, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListByCreatorAndStatus returns the creator's tasks in the given status.
func (r *PostgresRepository) ListByCreatorAndStatus(ctx context.Context, creatorID string, status domain.Status) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE creator_id = $1 AND status = $2 ORDER BY created_at DESC`,
		creatorID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// Create persists the task. The task must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	teamID := sql.NullString{String: t.TeamID, Valid: t.TeamID != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, creator_id, team_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Title, t.Description, string(t.Status), t.CreatorID, teamID, t.CreatedAt, t.UpdatedAt)
	return err
}

// Update persists mutable task fields for the task's ID.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`,
		t.ID, t.Title, t.Description, string(t.Status), t.UpdatedAt)
	return err
}

// Delete removes the task row. Idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var teamID sql.NullString
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatorID, &teamID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if teamID.Valid {
		t.TeamID = teamID.String
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
