package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidResetToken is returned when a reset token is malformed, expired,
// or signed with a different secret.
var ErrInvalidResetToken = errors.New("invalid reset token")

// resetClaims holds the claims of a password-reset token.
type resetClaims struct {
	jwt.RegisteredClaims
}

// ResetTokenSigner issues and validates short-lived password-reset tokens
// signed with HS256. The token carries only the user id; possession of a
// valid token authorizes exactly one password reset.
type ResetTokenSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewResetTokenSigner returns a signer using the given shared secret and token
// lifetime. issuer is set on claims and checked on validation.
func NewResetTokenSigner(secret, issuer string, ttl time.Duration) *ResetTokenSigner {
	return &ResetTokenSigner{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue returns a signed reset token for userID expiring after the configured TTL.
func (s *ResetTokenSigner) Issue(userID string) (string, error) {
	now := time.Now().UTC()
	claims := resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate parses and validates the token (signature, exp, iss) and returns
// the user id it was issued for.
func (s *ResetTokenSigner) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &resetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidResetToken
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidResetToken
	}
	claims, ok := token.Claims.(*resetClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidResetToken
	}
	if claims.Issuer != s.issuer {
		return "", ErrInvalidResetToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidResetToken
	}
	return claims.Subject, nil
}
