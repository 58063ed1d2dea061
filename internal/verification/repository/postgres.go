package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskhub/backend/internal/verification/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a verification token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByToken returns the verification token row, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM verification_tokens WHERE token = $1`, token)
	var t domain.VerificationToken
	err := row.Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Create persists the verification token.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.VerificationToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		t.Token, t.UserID, t.ExpiresAt, t.CreatedAt)
	return err
}

// Delete removes the token row. Idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE token = $1`, token)
	return err
}

// DeleteAllForUser removes any outstanding tokens for the user.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes rows whose expiry is before the cutoff. Returns the number of rows deleted.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
