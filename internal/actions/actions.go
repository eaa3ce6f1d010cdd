// Package actions is the boundary every caller goes through: each action
// resolves the caller's session before touching anything else, so transports
// stay thin and authorization lives in exactly one place.
package actions

import (
	"context"
	"log/slog"

	apikeyservice "account-security-core/internal/apikey/service"
	"account-security-core/internal/audit"
	auditdomain "account-security-core/internal/audit/domain"
	"account-security-core/internal/security"
	sessiondomain "account-security-core/internal/session/domain"
	sessionservice "account-security-core/internal/session/service"
	twofactorservice "account-security-core/internal/twofactor/service"
	userdomain "account-security-core/internal/user/domain"
)

// UserRepo is the minimal user repository needed by actions.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	TouchLastLogin(ctx context.Context, userID string) error
}

// AuditLog records security events and serves the per-user audit trail.
type AuditLog interface {
	audit.Recorder
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*auditdomain.Entry, error)
}

// Actions wires the account-security services behind session resolution and
// audit logging. Every exported method that takes a token authenticates first
// and never proceeds on failure.
type Actions struct {
	users     UserRepo
	sessions  *sessionservice.SessionService
	twofactor *twofactorservice.TwoFactorService
	apikeys   *apikeyservice.APIKeyService
	hasher    *security.Hasher
	reset     *security.ResetTokenSigner
	recorder  AuditLog
	logger    *slog.Logger
}

// New returns an Actions facade over the given services.
func New(
	users UserRepo,
	sessions *sessionservice.SessionService,
	twofactor *twofactorservice.TwoFactorService,
	apikeys *apikeyservice.APIKeyService,
	hasher *security.Hasher,
	reset *security.ResetTokenSigner,
	recorder AuditLog,
	logger *slog.Logger,
) *Actions {
	return &Actions{
		users:     users,
		sessions:  sessions,
		twofactor: twofactor,
		apikeys:   apikeys,
		hasher:    hasher,
		reset:     reset,
		recorder:  recorder,
		logger:    logger,
	}
}

// authenticate resolves the opaque token to a live session. Every failure
// surfaces as errs.ErrNotAuthenticated via the session service.
func (a *Actions) authenticate(ctx context.Context, token string) (*sessiondomain.Session, error) {
	return a.sessions.Resolve(ctx, token)
}
