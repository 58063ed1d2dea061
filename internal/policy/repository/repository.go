package repository

import (
	"context"

	"taskhub/backend/internal/policy/domain"
)

// Repository defines persistence for team access policies.
type Repository interface {
	// GetByID returns the policy for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.AccessPolicy, error)
	GetEnabledByTeam(ctx context.Context, teamID string) ([]*domain.AccessPolicy, error)
	Create(ctx context.Context, p *domain.AccessPolicy) error
	Delete(ctx context.Context, id string) error
}
