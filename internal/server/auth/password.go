package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher abstracts one-way password hashing.
// Session Manager is the only caller; the auth middleware never needs it.
type Hasher interface {
	// Hash returns a one-way hash of the password
	Hash(password string) (string, error)

	// Compare checks the password against the stored hash.
	// Returns an error on mismatch.
	Compare(hash, password string) error
}

// BcryptHasher implements Hasher on bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher.
// cost <= 0 falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash возвращает bcrypt хеш пароля
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare сравнивает пароль с хешем (константное время внутри bcrypt)
func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
