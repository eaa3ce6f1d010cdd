package repository

import (
	"context"

	"account-security-core/internal/twofactor/domain"
)

// Repository defines persistence for two-factor methods. Mutations are
// atomic, including the account's two_factor_enabled flag: readers never
// observe a user with methods but no primary, with two primaries, or with a
// method set that disagrees with the flag.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Method, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Method, error)
	// Create persists the method and raises the account flag in the same
	// transaction. The first method of a user is stored as primary regardless
	// of m.IsPrimary. A second method of the same type yields errs.ErrConflict.
	Create(ctx context.Context, m *domain.Method) error
	// Remove deletes the method. If it was primary and other methods remain,
	// the most recently created survivor is promoted; if none remain, the
	// account flag is cleared. All in the same transaction.
	Remove(ctx context.Context, id string) error
	// SetPrimary makes the method primary, demoting the previous primary in
	// the same transaction.
	SetPrimary(ctx context.Context, userID, id string) error
	// DeleteAllByUser wipes the user's methods and clears the account flag in
	// the same transaction.
	DeleteAllByUser(ctx context.Context, userID string) error
}
