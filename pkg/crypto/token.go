package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLength = 12

// Fingerprint returns a short, non-reversible identifier for a token so it
// can be correlated in logs without exposing the credential itself.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	hash := HashToken(token)
	return hash[:fingerprintLength]
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
