package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// NewRefreshSecret returns a fresh 256-bit refresh secret, base64url encoded.
// The raw value goes to the client and is never persisted.
func NewRefreshSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSecret computes the digest stored at rest: base64(sha256(raw)),
// a fixed 44-character string suitable for a unique index.
func HashSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}
