package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken returns a SHA-256 digest of the token string, hex-encoded.
// Used for storing and looking up API keys without storing the raw key.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TokenDigestEqual performs constant-time comparison of the provided token's
// digest with the stored digest. Returns true only if they match.
func TokenDigestEqual(providedToken, storedDigest string) bool {
	providedDigest := HashToken(providedToken)
	return subtle.ConstantTimeCompare([]byte(providedDigest), []byte(storedDigest)) == 1
}
