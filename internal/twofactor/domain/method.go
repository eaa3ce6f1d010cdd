package domain

import (
	"fmt"
	"strings"
	"time"
)

// MethodType identifies how a second factor is delivered or computed.
type MethodType string

const (
	MethodTOTP          MethodType = "TOTP"
	MethodAuthenticator MethodType = "AUTHENTICATOR"
	MethodSMS           MethodType = "SMS"
	MethodEmail         MethodType = "EMAIL"
)

// ParseMethodType normalizes and validates a method type string.
func ParseMethodType(s string) (MethodType, error) {
	switch t := MethodType(strings.ToUpper(strings.TrimSpace(s))); t {
	case MethodTOTP, MethodAuthenticator, MethodSMS, MethodEmail:
		return t, nil
	default:
		return "", fmt.Errorf("unknown two-factor method type %q", s)
	}
}

// UsesTOTPSecret reports whether the method's secret is a TOTP seed that can
// be verified locally. SMS and EMAIL secrets are delivery addresses.
func (t MethodType) UsesTOTPSecret() bool {
	return t == MethodTOTP || t == MethodAuthenticator
}

// Method is one configured second factor. A user holds at most one method per
// type, and exactly one method is primary whenever any exist.
type Method struct {
	ID        string
	UserID    string
	Type      MethodType
	Secret    string
	IsPrimary bool
	CreatedAt time.Time
}
