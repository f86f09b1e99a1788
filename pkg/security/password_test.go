package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hashed, err := hasher.Hash("long-enough-password")
	require.NoError(t, err)
	assert.NotEqual(t, "long-enough-password", hashed)

	assert.NoError(t, hasher.Compare(hashed, "long-enough-password"))
	assert.Error(t, hasher.Compare(hashed, "wrong-password"))
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher := NewBcryptHasher(4)

	_, err := hasher.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher(4)

	first, err := hasher.Hash("long-enough-password")
	require.NoError(t, err)
	second, err := hasher.Hash("long-enough-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestOutOfRangeCostFallsBackToDefault(t *testing.T) {
	hasher := NewBcryptHasher(99)

	hashed, err := hasher.Hash("long-enough-password")
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(hashed, "long-enough-password"))
}
