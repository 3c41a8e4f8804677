package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/you/classauth/domain"
)

// BcryptHasher implements domain.PasswordService. A cost outside bcrypt's
// valid range falls back to the library default.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt-backed password hasher
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements domain.PasswordService
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify implements domain.PasswordService
func (h *BcryptHasher) Verify(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// Compile-time interface compliance verification
var _ domain.PasswordService = (*BcryptHasher)(nil)
