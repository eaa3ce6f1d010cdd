package repository

import (
	"context"
	"time"

	"account-security-core/internal/session/domain"
)

// Repository defines persistence for sessions. Revocation is deletion; a
// token that no longer resolves is indistinguishable from one never issued.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteAllByUserExcept removes every session of the user except keepID
	// and returns the number of sessions removed.
	DeleteAllByUserExcept(ctx context.Context, userID, keepID string) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
