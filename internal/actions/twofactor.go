package actions

import (
	"context"

	"account-security-core/internal/errs"
	twofactordomain "account-security-core/internal/twofactor/domain"
	twofactorservice "account-security-core/internal/twofactor/service"
)

// GenerateTOTPEnrollment returns fresh TOTP material for the caller. Nothing
// is stored until AddTwoFactorMethod confirms the secret.
func (a *Actions) GenerateTOTPEnrollment(ctx context.Context, token string) (*twofactorservice.Enrollment, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := a.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrNotAuthenticated
	}
	return a.twofactor.GenerateTOTP(user.Email)
}

// AddTwoFactorMethod registers a second factor for the caller. TOTP-backed
// types must come with a current code proving the caller holds the secret.
// The first method becomes primary; a duplicate type yields ErrConflict. The
// account-level flag is raised atomically with the stored method.
func (a *Actions) AddTwoFactorMethod(ctx context.Context, token string, methodType twofactordomain.MethodType, secret, code string) (*twofactordomain.Method, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	m, err := a.twofactor.AddMethod(ctx, sess.UserID, methodType, secret, code)
	if err != nil {
		return nil, err
	}
	a.recorder.Record(ctx, sess.UserID, "two_factor_method_added", "two_factor_method", m.ID,
		map[string]string{"type": string(m.Type)})
	return m, nil
}

// ListTwoFactorMethods returns the caller's methods, newest first.
func (a *Actions) ListTwoFactorMethods(ctx context.Context, token string) ([]*twofactordomain.Method, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return a.twofactor.ListMethods(ctx, sess.UserID)
}

// RemoveTwoFactorMethod deletes one of the caller's methods. Removing the
// last one clears the account-level flag atomically with the delete.
func (a *Actions) RemoveTwoFactorMethod(ctx context.Context, token, methodID string) error {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := a.twofactor.RemoveMethod(ctx, sess.UserID, methodID); err != nil {
		return err
	}
	a.recorder.Record(ctx, sess.UserID, "two_factor_method_removed", "two_factor_method", methodID, nil)
	return nil
}

// SetPrimaryTwoFactorMethod makes one of the caller's methods the primary one.
func (a *Actions) SetPrimaryTwoFactorMethod(ctx context.Context, token, methodID string) error {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := a.twofactor.SetPrimary(ctx, sess.UserID, methodID); err != nil {
		return err
	}
	a.recorder.Record(ctx, sess.UserID, "two_factor_primary_changed", "two_factor_method", methodID, nil)
	return nil
}

// DisableTwoFactor removes every method of the caller; the account-level flag
// is cleared atomically with the wipe.
func (a *Actions) DisableTwoFactor(ctx context.Context, token string) error {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := a.twofactor.Disable(ctx, sess.UserID); err != nil {
		return err
	}
	a.recorder.Record(ctx, sess.UserID, "two_factor_disabled", "user", sess.UserID, nil)
	return nil
}
