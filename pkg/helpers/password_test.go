package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordNeverPlaintext(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)
	assert.True(t, CompareHashAndPassword(hash, "password1"))
	assert.False(t, CompareHashAndPassword(hash, "password2"))
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	assert.False(t, CompareHashAndPassword("", ""))
	assert.False(t, CompareHashAndPassword("plaintext", "plaintext"))
}
