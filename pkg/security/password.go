package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLen = 72
)

var (
	ErrPasswordShort    = errors.New("password too short")
	ErrPasswordLong     = errors.New("password too long")
	ErrPasswordMismatch = errors.New("password does not match")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (b *BcryptHasher) Hash(password string) (string, error) {
	switch {
	case len(password) < MinPasswordLen:
		return "", ErrPasswordShort
	case len(password) > MaxPasswordLen:
		return "", ErrPasswordLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare returns ErrPasswordMismatch for a wrong password and any other
// error for a malformed hash.
func (b *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
