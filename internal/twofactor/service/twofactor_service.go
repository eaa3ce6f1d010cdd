package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"account-security-core/internal/errs"
	"account-security-core/internal/twofactor/domain"
)

// totpOpts pins the code parameters: 6 digits, SHA-1, 30-second steps, and one
// step of skew either side so clock drift of up to ~30s still verifies.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// MethodRepo is the minimal method repository needed by the two-factor service.
type MethodRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Method, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Method, error)
	Create(ctx context.Context, m *domain.Method) error
	Remove(ctx context.Context, id string) error
	SetPrimary(ctx context.Context, userID, id string) error
	DeleteAllByUser(ctx context.Context, userID string) error
}

// Enrollment is the material handed to the user when setting up TOTP: the
// base32 seed and the otpauth:// URL most authenticator apps scan as a QR code.
type Enrollment struct {
	Secret string
	URL    string
}

// TwoFactorService manages second-factor methods and verifies TOTP codes.
type TwoFactorService struct {
	repo   MethodRepo
	issuer string
	now    func() time.Time
}

// NewTwoFactorService returns a TwoFactorService. issuer is the label shown in
// authenticator apps.
func NewTwoFactorService(repo MethodRepo, issuer string) *TwoFactorService {
	return &TwoFactorService{repo: repo, issuer: issuer, now: func() time.Time { return time.Now().UTC() }}
}

// GenerateTOTP creates fresh TOTP enrollment material for the account. Nothing
// is persisted; the secret only becomes active through AddMethod.
func (s *TwoFactorService) GenerateTOTP(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generating totp secret: %v", errs.ErrInternal, err)
	}
	return &Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// VerifyTOTP checks the code against the user's TOTP-capable method, primary
// first. No configured TOTP method yields ErrInvalidState; a wrong code yields
// ErrInvalidCredential.
func (s *TwoFactorService) VerifyTOTP(ctx context.Context, userID, code string) error {
	methods, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	var candidate *domain.Method
	for _, m := range methods {
		if !m.Type.UsesTOTPSecret() {
			continue
		}
		if m.IsPrimary {
			candidate = m
			break
		}
		if candidate == nil {
			candidate = m
		}
	}
	if candidate == nil {
		return fmt.Errorf("%w: no TOTP method configured", errs.ErrInvalidState)
	}
	ok, err := totp.ValidateCustom(code, candidate.Secret, s.now(), totpOpts)
	if err != nil {
		return fmt.Errorf("%w: validating totp code: %v", errs.ErrInternal, err)
	}
	if !ok {
		return fmt.Errorf("%w: totp code rejected", errs.ErrInvalidCredential)
	}
	return nil
}

// AddMethod registers a method of the given type for the user. TOTP-backed
// types must prove possession of the secret: the caller supplies a current
// code, and a secret whose code does not verify is never persisted. A secret
// that cannot be decoded yields ErrInvalidState; a wrong code yields
// ErrInvalidCredential. SMS and EMAIL methods may omit the secret, in which
// case a placeholder is generated (code delivery is out of band).
//
// The first method a user adds becomes primary; adding a second method of an
// existing type yields ErrConflict. The repository raises the account-level
// two-factor flag together with the insert.
func (s *TwoFactorService) AddMethod(ctx context.Context, userID string, methodType domain.MethodType, secret, code string) (*domain.Method, error) {
	now := s.now()
	if methodType.UsesTOTPSecret() {
		if secret == "" {
			return nil, fmt.Errorf("%w: method secret is required", errs.ErrInvalidState)
		}
		ok, err := totp.ValidateCustom(code, secret, now, totpOpts)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed totp secret", errs.ErrInvalidState)
		}
		if !ok {
			return nil, fmt.Errorf("%w: totp code rejected", errs.ErrInvalidCredential)
		}
	} else if secret == "" {
		generated, err := placeholderSecret()
		if err != nil {
			return nil, fmt.Errorf("%w: generating placeholder secret: %v", errs.ErrInternal, err)
		}
		secret = generated
	}
	m := &domain.Method{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      methodType,
		Secret:    secret,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMethods returns the user's methods, newest first.
func (s *TwoFactorService) ListMethods(ctx context.Context, userID string) ([]*domain.Method, error) {
	return s.repo.ListByUser(ctx, userID)
}

// RemoveMethod deletes the user's method. Removing the primary promotes the
// most recently created remaining method. A method that does not exist or
// belongs to another user yields ErrNotFound.
func (s *TwoFactorService) RemoveMethod(ctx context.Context, userID, methodID string) error {
	m, err := s.repo.GetByID(ctx, methodID)
	if err != nil {
		return err
	}
	if m == nil || m.UserID != userID {
		return errs.ErrNotFound
	}
	return s.repo.Remove(ctx, methodID)
}

// SetPrimary makes the user's method the primary one, demoting the previous
// primary. Unknown or unowned methods yield ErrNotFound.
func (s *TwoFactorService) SetPrimary(ctx context.Context, userID, methodID string) error {
	return s.repo.SetPrimary(ctx, userID, methodID)
}

// Disable removes every method of the user. The repository clears the
// account-level two-factor flag in the same transaction.
func (s *TwoFactorService) Disable(ctx context.Context, userID string) error {
	return s.repo.DeleteAllByUser(ctx, userID)
}

// placeholderSecret fills the secret column for methods whose codes are
// delivered out of band.
func placeholderSecret() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
