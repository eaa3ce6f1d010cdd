package domain

import (
	"errors"
	"strings"
	"time"
)

// User is the account entity all security operations hang off.
type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	TwoFactorEnabled     bool
	Verified             bool
	LastLoginAt          *time.Time
	LastPasswordChangeAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate validates the user for persistence. Returns an error describing the
// first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("email is malformed")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
