package keystore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// secretBytes is the entropy of a generated API key secret.
const secretBytes = 32

// HashKey returns the hex-encoded SHA-256 digest of a raw API key
// secret. It is the only form in which credentials are ever stored or
// compared; any input hashes to a value, there is no error path.
func HashKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// GenerateKey returns a new raw API key secret: 32 bytes of
// cryptographic randomness, base64url encoded without padding.
func GenerateKey() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
