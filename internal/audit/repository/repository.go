package repository

import (
	"context"

	"taskhub/backend/internal/audit/domain"
)

// Repository stores and queries audit log entries. Lookups return
// (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error)
}
