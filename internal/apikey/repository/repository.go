package repository

import (
	"context"
	"time"

	"account-security-core/internal/apikey/domain"
)

// Repository defines persistence for API keys.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByDigest(ctx context.Context, digest string) (*domain.APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Create(ctx context.Context, k *domain.APIKey) error
	Delete(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
