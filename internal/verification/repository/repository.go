package repository

import (
	"context"
	"time"

	"taskhub/backend/internal/verification/domain"
)

// Repository defines persistence for verification tokens.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	Create(ctx context.Context, t *domain.VerificationToken) error
	Delete(ctx context.Context, token string) error
	// DeleteAllForUser removes any outstanding tokens for the user, so a resend
	// leaves exactly one valid token.
	DeleteAllForUser(ctx context.Context, userID string) error
	// DeleteExpired removes rows whose expiry is before the cutoff. Returns the number of rows deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
