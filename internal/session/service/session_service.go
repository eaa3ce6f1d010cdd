package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"account-security-core/internal/errs"
	"account-security-core/internal/security"
	"account-security-core/internal/session/domain"
)

// SessionRepo is the minimal session repository needed by the session service.
type SessionRepo interface {
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
	DeleteAllByUserExcept(ctx context.Context, userID, keepID string) (int64, error)
}

// SessionService issues, resolves, lists, and revokes opaque-token sessions.
type SessionService struct {
	repo SessionRepo
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionService returns a SessionService creating sessions with the given lifetime.
func NewSessionService(repo SessionRepo, ttl time.Duration) *SessionService {
	return &SessionService{repo: repo, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Create issues a new session for the user and returns it with the token set.
// The token is surfaced here and never again; listings omit it.
func (s *SessionService) Create(ctx context.Context, userID, userAgent string) (*domain.Session, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return nil, fmt.Errorf("%w: generating session token: %v", errs.ErrInternal, err)
	}
	now := s.now()
	sess := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve returns the live session for the token. Unknown and expired tokens
// both yield ErrNotAuthenticated; an expired row is deleted on the way out.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, errs.ErrNotAuthenticated
	}
	sess, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errs.ErrNotAuthenticated
	}
	if sess.Expired(s.now()) {
		_ = s.repo.Delete(ctx, sess.ID)
		return nil, errs.ErrNotAuthenticated
	}
	return sess, nil
}

// List returns the user's live sessions newest first, marking the one whose id
// matches currentID. Expired rows are filtered out, not surfaced.
func (s *SessionService) List(ctx context.Context, userID, currentID string) ([]*domain.Info, error) {
	sessions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*domain.Info, 0, len(sessions))
	for _, sess := range sessions {
		if sess.Expired(now) {
			continue
		}
		out = append(out, &domain.Info{
			ID:        sess.ID,
			Client:    domain.ClientSummary(sess.UserAgent),
			IsCurrent: sess.ID == currentID,
			CreatedAt: sess.CreatedAt,
			ExpiresAt: sess.ExpiresAt,
		})
	}
	return out, nil
}

// Revoke deletes the user's session with the given id. A session that does
// not exist or belongs to another user yields ErrNotFound.
func (s *SessionService) Revoke(ctx context.Context, userID, sessionID string) error {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil || sess.UserID != userID {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, sess.ID)
}

// RevokeOthers deletes every session of the user except the current one and
// returns how many were removed. It fails closed: if the current session
// cannot be confirmed to exist and belong to the user, nothing is deleted
// and ErrInvalidState is returned.
func (s *SessionService) RevokeOthers(ctx context.Context, userID, currentID string) (int64, error) {
	cur, err := s.repo.GetByID(ctx, currentID)
	if err != nil {
		return 0, err
	}
	if cur == nil || cur.UserID != userID {
		return 0, fmt.Errorf("%w: current session not found for user", errs.ErrInvalidState)
	}
	return s.repo.DeleteAllByUserExcept(ctx, userID, currentID)
}

// RevokeAll deletes every session of the user. Used after a password reset,
// where no session is the caller's.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAllByUserExcept(ctx, userID, "")
}
