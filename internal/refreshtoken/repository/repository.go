package repository

import (
	"context"
	"time"

	"taskhub/backend/internal/refreshtoken/domain"
)

// Repository defines persistence for issued refresh tokens.
type Repository interface {
	GetByJti(ctx context.Context, jti string) (*domain.StoredRefreshToken, error)
	Save(ctx context.Context, t *domain.StoredRefreshToken) error
	// MarkRotated sets revoked_at and replaced_by_jti on the row for jti, but
	// only if it is not already revoked. Returns true when the row was updated;
	// false means a concurrent rotation won the race (or the row is gone) and
	// the caller must treat the token as revoked.
	MarkRotated(ctx context.Context, jti, replacedByJti string, at time.Time) (bool, error)
	DeleteAllForUser(ctx context.Context, userID string) error
	// DeleteExpired removes rows whose expiry is before the cutoff, plus rows
	// revoked before the cutoff. Returns the number of rows deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
