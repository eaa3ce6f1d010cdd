package repository

import (
	"context"

	"account-security-core/internal/audit/domain"
)

// Repository defines persistence for audit entries. Append and read only.
type Repository interface {
	Create(ctx context.Context, e *domain.Entry) error
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.Entry, error)
	ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int32) ([]*domain.Entry, error)
}
