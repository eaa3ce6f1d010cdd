package domain

import (
	"errors"
	"time"
)

// APIKey is a stored key record. The plaintext key is never persisted; only
// its digest is, so a listed key can be identified but not replayed.
type APIKey struct {
	ID         string
	UserID     string
	Name       string
	KeyDigest  string
	Scopes     []string
	ExpiresAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Validate validates the key record for persistence.
func (k *APIKey) Validate() error {
	if k.Name == "" {
		return errors.New("key name is required")
	}
	if k.KeyDigest == "" {
		return errors.New("key digest is required")
	}
	return nil
}

// Expired reports whether the key has an expiry in the past at the given time.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// Created pairs a stored key with its plaintext, surfaced exactly once at
// creation time.
type Created struct {
	Key       *APIKey
	Plaintext string
}
