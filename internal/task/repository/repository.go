package repository

import (
	"context"

	"taskhub/backend/internal/task/domain"
)

// Repository defines persistence for tasks.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*domain.Task, error)
	ListByTeam(ctx context.Context, teamID string) ([]*domain.Task, error)
	// SearchByTitle returns the creator's tasks whose title contains keyword, case-insensitively.
	SearchByTitle(ctx context.Context, creatorID, keyword string) ([]*domain.Task, error)
	ListByCreatorAndStatus(ctx context.Context, creatorID string, status domain.Status) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}
