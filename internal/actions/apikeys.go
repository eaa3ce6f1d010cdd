package actions

import (
	"context"
	"time"

	apikeydomain "account-security-core/internal/apikey/domain"
)

// CreateAPIKey issues a key for the caller. The plaintext in the result is
// surfaced exactly once; only a digest is stored.
func (a *Actions) CreateAPIKey(ctx context.Context, token, name string, scopes []string, expiresAt *time.Time) (*apikeydomain.Created, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	created, err := a.apikeys.Create(ctx, sess.UserID, name, scopes, expiresAt)
	if err != nil {
		return nil, err
	}
	a.recorder.Record(ctx, sess.UserID, "api_key_created", "api_key", created.Key.ID,
		map[string]string{"name": name})
	return created, nil
}

// ListAPIKeys returns the caller's keys, newest first.
func (a *Actions) ListAPIKeys(ctx context.Context, token string) ([]*apikeydomain.APIKey, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return a.apikeys.List(ctx, sess.UserID)
}

// DeleteAPIKey removes one of the caller's keys. Unknown or unowned ids yield
// ErrNotFound.
func (a *Actions) DeleteAPIKey(ctx context.Context, token, keyID string) error {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := a.apikeys.Delete(ctx, sess.UserID, keyID); err != nil {
		return err
	}
	a.recorder.Record(ctx, sess.UserID, "api_key_deleted", "api_key", keyID, nil)
	return nil
}
