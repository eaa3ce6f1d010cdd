package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// sessionTokenBytes is the entropy of a session token (hex-doubled on the wire).
const sessionTokenBytes = 32

// apiKeyBytes is the entropy of the random suffix of an API key.
const apiKeyBytes = 32

// APIKeyPrefix is the fixed prefix of every issued API key. The textual
// format "ask_<64 hex>" is a public contract; external clients parse it.
const APIKeyPrefix = "ask"

// NewSessionToken returns a 64-char hex session token from crypto/rand.
// Tokens are globally unique in practice (256 bits) and additionally guarded
// by a DB unique index; they are never reissued.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewAPIKey returns a new plaintext API key "ask_<64 hex>" and its SHA-256
// digest. Only the digest is stored; the plaintext is surfaced exactly once
// at creation.
func NewAPIKey() (plaintext, digest string, err error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plaintext = APIKeyPrefix + "_" + hex.EncodeToString(b)
	return plaintext, HashToken(plaintext), nil
}

// ValidateAPIKeyFormat checks that key matches the documented
// "<prefix>_<32+ hex>" shape without touching storage. Returns an error
// naming the first violation.
func ValidateAPIKeyFormat(key string) error {
	prefix, suffix, ok := strings.Cut(key, "_")
	if !ok || prefix != APIKeyPrefix {
		return fmt.Errorf("api key must start with %q", APIKeyPrefix+"_")
	}
	if len(suffix) < 32 {
		return fmt.Errorf("api key suffix must be at least 32 hex characters")
	}
	for _, r := range suffix {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return fmt.Errorf("api key suffix must be lowercase hex")
		}
	}
	return nil
}
