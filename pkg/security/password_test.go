package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.ErrorIs(t, h.Compare(hash, "secret2"), ErrPasswordMismatch)
	assert.Error(t, h.Compare("not-a-hash", "secret1"))
}

func TestBcryptHasherLengthLimits(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash("abc")
	assert.ErrorIs(t, err, ErrPasswordShort)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordLen+1))
	assert.ErrorIs(t, err, ErrPasswordLong)
}

func TestNewBcryptHasherDefaultsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(bcrypt.MinCost).cost)
}
