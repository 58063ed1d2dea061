package repository

import (
	"context"

	"taskhub/backend/internal/team/domain"
)

// Repository defines persistence for teams.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Team, error)
	Create(ctx context.Context, t *domain.Team) error
	Update(ctx context.Context, t *domain.Team) error
	Delete(ctx context.Context, id string) error
}
