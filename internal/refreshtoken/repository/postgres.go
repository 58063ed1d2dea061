package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskhub/backend/internal/refreshtoken/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a refresh token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByJti returns the stored refresh token for jti, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByJti(ctx context.Context, jti string) (*domain.StoredRefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, jti, token_hash, expires_at, revoked_at, replaced_by_jti, created_at
		 FROM refresh_tokens WHERE jti = $1`, jti)
	var t domain.StoredRefreshToken
	var revokedAt sql.NullTime
	var replacedBy sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.Jti, &t.TokenHash, &t.ExpiresAt, &revokedAt, &replacedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if revokedAt.Valid {
		t.RevokedAt = &revokedAt.Time
	}
	if replacedBy.Valid {
		t.ReplacedByJti = replacedBy.String
	}
	return &t, nil
}

// Save persists the stored refresh token. The token must have ID and Jti set.
// The unique indexes on jti and token_hash turn duplicate inserts into errors.
func (r *PostgresRepository) Save(ctx context.Context, t *domain.StoredRefreshToken) error {
	var revokedAt sql.NullTime
	if t.RevokedAt != nil {
		revokedAt = sql.NullTime{Time: *t.RevokedAt, Valid: true}
	}
	replacedBy := sql.NullString{String: t.ReplacedByJti, Valid: t.ReplacedByJti != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, jti, token_hash, expires_at, revoked_at, replaced_by_jti, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.Jti, t.TokenHash, t.ExpiresAt, revokedAt, replacedBy, t.CreatedAt)
	return err
}

// MarkRotated revokes the row for jti and records its successor, conditionally
// on the row not being revoked yet. A zero-row update means a concurrent
// rotation already consumed the token.
func (r *PostgresRepository) MarkRotated(ctx context.Context, jti, replacedByJti string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = $2, replaced_by_jti = $3
		 WHERE jti = $1 AND revoked_at IS NULL`,
		jti, at, replacedByJti)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllForUser removes all refresh token rows for the user. Idempotent.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes rows expired or revoked before the cutoff. Returns the number of rows deleted.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
