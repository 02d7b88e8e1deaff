// Package credential hashes and verifies account passwords.
package credential

import (
	"errors"
	"strings"

	"todo-backend/pkg/apperror"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentialInput = apperror.InvalidInput("password must not be empty")

type Hasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. It never fails; a malformed
	// hash simply does not match.
	Verify(plain, hash string) bool
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, falling back to bcrypt.DefaultCost
// when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	if strings.TrimSpace(plain) == "" {
		return "", ErrInvalidCredentialInput
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.InvalidInput("password must be at most 72 bytes")
		}
		return "", err
	}
	return string(bytes), nil
}

func (h *BcryptHasher) Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
