package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Supported digest algorithms for stored passwords.
const (
	HashSHA256  = "sha256"
	HashBlake2b = "blake2b"
)

// PasswordHasher turns a password into a fixed-length hex digest.  The
// digest is deterministic and unsalted: login compares digests with an
// equality lookup, so the same input must always hash the same way.
type PasswordHasher struct {
	sum func([]byte) [32]byte
}

// NewPasswordHasher returns a hasher for the named algorithm.  sha256 is
// the default and matches digests created by earlier versions of the
// system.
func NewPasswordHasher(algorithm string) (*PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", HashSHA256:
		return &PasswordHasher{sum: sha256.Sum256}, nil
	case HashBlake2b:
		return &PasswordHasher{sum: blake2b.Sum256}, nil
	}
	return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
}

// Hash returns the lowercase hex digest of plain (64 characters).
func (h *PasswordHasher) Hash(plain string) string {
	sum := h.sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}
