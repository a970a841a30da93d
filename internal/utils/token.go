package utils

import (
	"crypto/rand"  // Cryptographically secure randomness
	"encoding/hex" // Hex encoding for tokens
)

// GenerateSessionToken creates a 256-bit random session token, hex-encoded
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32) // 32 random bytes = 256 bits
	if _, err := rand.Read(b); err != nil {
		return "", err // Return error if the system randomness source fails
	}
	return hex.EncodeToString(b), nil // 64 hex characters
}
