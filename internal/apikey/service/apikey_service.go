package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"account-security-core/internal/apikey/domain"
	"account-security-core/internal/errs"
	"account-security-core/internal/security"
)

// KeyRepo is the minimal API key repository needed by the key service.
type KeyRepo interface {
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByDigest(ctx context.Context, digest string) (*domain.APIKey, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Create(ctx context.Context, k *domain.APIKey) error
	Delete(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}

// APIKeyService issues, lists, deletes, and verifies API keys. Scopes are
// stored and returned verbatim; enforcement belongs to whoever consumes them.
type APIKeyService struct {
	repo   KeyRepo
	logger *slog.Logger
	now    func() time.Time
}

// NewAPIKeyService returns an APIKeyService over the given repository.
func NewAPIKeyService(repo KeyRepo, logger *slog.Logger) *APIKeyService {
	return &APIKeyService{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Create issues a new key for the user. The plaintext is returned exactly
// once; only its digest is stored.
func (s *APIKeyService) Create(ctx context.Context, userID, name string, scopes []string, expiresAt *time.Time) (*domain.Created, error) {
	plaintext, digest, err := security.NewAPIKey()
	if err != nil {
		return nil, fmt.Errorf("%w: generating api key: %v", errs.ErrInternal, err)
	}
	k := &domain.APIKey{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		KeyDigest: digest,
		Scopes:    scopes,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	if err := k.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidState, err)
	}
	if err := s.repo.Create(ctx, k); err != nil {
		return nil, err
	}
	return &domain.Created{Key: k, Plaintext: plaintext}, nil
}

// List returns the user's keys, newest first. Digests stay internal to the
// record; callers render names, scopes, and timestamps.
func (s *APIKeyService) List(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes the user's key. A key that does not exist or belongs to
// another user yields ErrNotFound.
func (s *APIKeyService) Delete(ctx context.Context, userID, keyID string) error {
	k, err := s.repo.GetByID(ctx, keyID)
	if err != nil {
		return err
	}
	if k == nil || k.UserID != userID {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, k.ID)
}

// VerifyKey resolves a plaintext key to its stored record. Malformed, unknown,
// and expired keys all yield ErrInvalidCredential. Successful verification
// stamps last_used_at best-effort.
func (s *APIKeyService) VerifyKey(ctx context.Context, plaintext string) (*domain.APIKey, error) {
	if err := security.ValidateAPIKeyFormat(plaintext); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidCredential, err)
	}
	k, err := s.repo.GetByDigest(ctx, security.HashToken(plaintext))
	if err != nil {
		return nil, err
	}
	if k == nil || !security.TokenDigestEqual(plaintext, k.KeyDigest) {
		return nil, fmt.Errorf("%w: unknown api key", errs.ErrInvalidCredential)
	}
	now := s.now()
	if k.Expired(now) {
		return nil, fmt.Errorf("%w: api key expired", errs.ErrInvalidCredential)
	}
	if err := s.repo.TouchLastUsed(ctx, k.ID, now); err != nil {
		s.logger.WarnContext(ctx, "stamping api key last_used_at failed", "key_id", k.ID, "error", err)
	}
	return k, nil
}
