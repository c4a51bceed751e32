package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashAPIKey returns the hex SHA256 digest under which an API key is stored.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// NewAPIKey returns prefix followed by entropyBytes of crypto/rand output, hex encoded.
func NewAPIKey(prefix string, entropyBytes int) (string, error) {
	if entropyBytes < 16 {
		return "", fmt.Errorf("api key needs at least 16 bytes of entropy, got %d", entropyBytes)
	}
	b := make([]byte, entropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return prefix + hex.EncodeToString(b), nil
}
