package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// OneTimeToken is a random credential handed to the user out-of-band
// (email verification, password reset). Only Hash is ever persisted;
// presenting Plain and re-hashing it is the only way to match it.
type OneTimeToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// NewOneTimeToken generates 20 random bytes, hex-encoded, with a SHA-256
// hash of the encoded value and an expiry ttl from now.
func NewOneTimeToken(ttl time.Duration) (*OneTimeToken, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate one-time token: %w", err)
	}
	plain := hex.EncodeToString(b)
	return &OneTimeToken{
		Plain:     plain,
		Hash:      HashOneTimeToken(plain),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// HashOneTimeToken re-derives the stored hash from a presented plain value.
func HashOneTimeToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
