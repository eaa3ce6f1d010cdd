package security

import (
	"crypto/rand"
	"math/big"
)

// passwordCharset is the fixed alphabet for generated passwords: letters,
// digits, and punctuation.
const passwordCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*()-_=+[]{}<>?"

// DefaultPasswordLength is used when GenerateRandomPassword gets length <= 0.
const DefaultPasswordLength = 12

// GenerateRandomPassword returns a cryptographically random password of the
// requested length drawn from the fixed charset. Used for resets only; the
// result is handed to the user and never persisted in plaintext.
func GenerateRandomPassword(length int) (string, error) {
	if length <= 0 {
		length = DefaultPasswordLength
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
