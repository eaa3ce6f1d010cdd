package actions

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"account-security-core/internal/errs"
	"account-security-core/internal/security"
	sessiondomain "account-security-core/internal/session/domain"
	userdomain "account-security-core/internal/user/domain"
)

// LoginResult is the outcome of Login. When TwoFactorRequired is set the
// credentials were correct but no session was created; the caller must retry
// with a TOTP code.
type LoginResult struct {
	Session           *sessiondomain.Session
	UserID            string
	TwoFactorRequired bool
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Register creates an account with the given email and password.
// An already registered email yields ErrConflict.
func (a *Actions) Register(ctx context.Context, email, password string) (*userdomain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", errs.ErrInvalidState)
	}
	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidState, err)
	}
	existing, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", errs.ErrConflict)
	}
	hash, err := a.hasher.Hash(ctx, []byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidState, err)
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	a.recorder.Record(ctx, user.ID, "user_registered", "user", user.ID, nil)
	return user, nil
}

// Login authenticates with email and password. Accounts with two-factor
// enabled additionally need a valid TOTP code; Login without one returns
// TwoFactorRequired instead of a session. Wrong email, password, and code
// are indistinguishable to the caller.
func (a *Actions) Login(ctx context.Context, email, password, totpCode, userAgent string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: missing credentials", errs.ErrInvalidCredential)
	}
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown email or wrong password", errs.ErrInvalidCredential)
	}
	ok, err := a.hasher.Verify(ctx, []byte(password), user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		a.recorder.Record(ctx, user.ID, "login_failed", "user", user.ID, nil)
		return nil, fmt.Errorf("%w: unknown email or wrong password", errs.ErrInvalidCredential)
	}
	if user.TwoFactorEnabled {
		if totpCode == "" {
			return &LoginResult{UserID: user.ID, TwoFactorRequired: true}, nil
		}
		if err := a.twofactor.VerifyTOTP(ctx, user.ID, totpCode); err != nil {
			if errors.Is(err, errs.ErrInvalidCredential) {
				a.recorder.Record(ctx, user.ID, "login_failed", "user", user.ID,
					map[string]string{"reason": "totp"})
			}
			return nil, err
		}
	}
	sess, err := a.sessions.Create(ctx, user.ID, userAgent)
	if err != nil {
		return nil, err
	}
	if err := a.users.TouchLastLogin(ctx, user.ID); err != nil {
		a.logger.WarnContext(ctx, "stamping last_login_at failed", "user_id", user.ID, "error", err)
	}
	a.recorder.Record(ctx, user.ID, "login", "session", sess.ID, nil)
	return &LoginResult{Session: sess, UserID: user.ID}, nil
}

// Logout revokes the caller's own session. An unknown token is a no-op.
func (a *Actions) Logout(ctx context.Context, token string) error {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, errs.ErrNotAuthenticated) {
			return nil
		}
		return err
	}
	if err := a.sessions.Revoke(ctx, sess.UserID, sess.ID); err != nil {
		return err
	}
	a.recorder.Record(ctx, sess.UserID, "logout", "session", sess.ID, nil)
	return nil
}

// ChangePassword replaces the caller's password after verifying the current
// one, then revokes every other session so a stolen password cannot keep a
// foothold.
func (a *Actions) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return err
	}
	user, err := a.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.ErrNotAuthenticated
	}
	ok, err := a.hasher.Verify(ctx, []byte(currentPassword), user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: current password is wrong", errs.ErrInvalidCredential)
	}
	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidState, err)
	}
	hash, err := a.hasher.Hash(ctx, []byte(newPassword))
	if err != nil {
		return err
	}
	if err := a.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	if _, err := a.sessions.RevokeOthers(ctx, user.ID, sess.ID); err != nil {
		a.logger.WarnContext(ctx, "revoking other sessions after password change failed",
			"user_id", user.ID, "error", err)
	}
	a.recorder.Record(ctx, user.ID, "password_changed", "user", user.ID, nil)
	return nil
}

// RequestPasswordReset issues a signed, short-lived reset token for the email.
// An unknown email yields ErrNotFound; callers that must not leak account
// existence mask that themselves.
func (a *Actions) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errs.ErrNotFound
	}
	token, err := a.reset.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("%w: issuing reset token: %v", errs.ErrInternal, err)
	}
	a.recorder.Record(ctx, user.ID, "password_reset_requested", "user", user.ID, nil)
	return token, nil
}

// ResetPassword sets a new password for the user a valid reset token names.
// An empty newPassword asks for a random one, which is returned to the caller.
// All sessions of the user are revoked.
func (a *Actions) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	userID, err := a.reset.Validate(resetToken)
	if err != nil {
		return "", fmt.Errorf("%w: reset token rejected", errs.ErrInvalidCredential)
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("%w: reset token rejected", errs.ErrInvalidCredential)
	}
	generated := ""
	if newPassword == "" {
		generated, err = security.GenerateRandomPassword(security.DefaultPasswordLength)
		if err != nil {
			return "", fmt.Errorf("%w: generating password: %v", errs.ErrInternal, err)
		}
		newPassword = generated
	} else if err := validatePassword(newPassword); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInvalidState, err)
	}
	hash, err := a.hasher.Hash(ctx, []byte(newPassword))
	if err != nil {
		return "", err
	}
	if err := a.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return "", err
	}
	if _, err := a.sessions.RevokeAll(ctx, user.ID); err != nil {
		a.logger.WarnContext(ctx, "revoking sessions after password reset failed",
			"user_id", user.ID, "error", err)
	}
	a.recorder.Record(ctx, user.ID, "password_reset", "user", user.ID, nil)
	return generated, nil
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	if !hasUpper || !hasLower || !hasNumber {
		return errors.New("password must mix upper case, lower case, and digits")
	}
	return nil
}
