// internal/admin/gate.go
package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Gate checks candidate passwords against the single configured secret.
// Only the salted hash is kept in memory.
type Gate struct {
	salt []byte
	hash []byte
}

// NewGate hashes secret with a fresh random salt.
func NewGate(secret string) (*Gate, error) {
	if secret == "" {
		return nil, fmt.Errorf("admin secret is empty")
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return &Gate{salt: salt, hash: derive(secret, salt)}, nil
}

func derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}

// Check returns ErrInvalidCredentials unless candidate equals the secret.
func (g *Gate) Check(candidate string) error {
	if subtle.ConstantTimeCompare(derive(candidate, g.salt), g.hash) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
