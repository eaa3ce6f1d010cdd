package repository

import (
	"context"

	"account-security-core/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdatePasswordHash replaces the stored hash and stamps last_password_change_at.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	TouchLastLogin(ctx context.Context, userID string) error
}
