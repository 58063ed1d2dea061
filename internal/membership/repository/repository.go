package repository

import (
	"context"

	"taskhub/backend/internal/membership/domain"
)

// Repository defines persistence for team memberships.
type Repository interface {
	GetByTeamAndUser(ctx context.Context, teamID, userID string) (*domain.Membership, error)
	ListByTeam(ctx context.Context, teamID string) ([]*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, teamID, userID string, role domain.Role) error
	Delete(ctx context.Context, teamID, userID string) error
	DeleteAllForTeam(ctx context.Context, teamID string) error
}
