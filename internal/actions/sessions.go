package actions

import (
	"context"
	"strconv"

	sessiondomain "account-security-core/internal/session/domain"
)

// ListSessions returns the caller's live sessions, the current one flagged.
func (a *Actions) ListSessions(ctx context.Context, token string) ([]*sessiondomain.Info, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return a.sessions.List(ctx, sess.UserID, sess.ID)
}

// RevokeSession revokes one of the caller's sessions by id, including the
// current one. Unknown or unowned ids yield ErrNotFound.
func (a *Actions) RevokeSession(ctx context.Context, token, sessionID string) error {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := a.sessions.Revoke(ctx, sess.UserID, sessionID); err != nil {
		return err
	}
	a.recorder.Record(ctx, sess.UserID, "session_revoked", "session", sessionID, nil)
	return nil
}

// RevokeOtherSessions revokes every session of the caller except the current
// one and returns how many were revoked.
func (a *Actions) RevokeOtherSessions(ctx context.Context, token string) (int64, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return 0, err
	}
	n, err := a.sessions.RevokeOthers(ctx, sess.UserID, sess.ID)
	if err != nil {
		return 0, err
	}
	a.recorder.Record(ctx, sess.UserID, "other_sessions_revoked", "session", sess.ID,
		map[string]string{"revoked": strconv.FormatInt(n, 10)})
	return n, nil
}
