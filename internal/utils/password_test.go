package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret"))
}

func TestHashPassword_BadCostFallsBack(t *testing.T) {
	hash, err := HashPassword("s3cret", 0)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret"))
}

func TestNewTempPassword(t *testing.T) {
	pw, err := NewTempPassword()
	require.NoError(t, err)
	assert.Len(t, pw, tempLength)

	// One character from each class, none of the ambiguous ones.
	assert.True(t, strings.ContainsAny(pw, tempLower))
	assert.True(t, strings.ContainsAny(pw, tempUpper))
	assert.True(t, strings.ContainsAny(pw, tempDigits))
	assert.True(t, strings.ContainsAny(pw, tempSymbols))
	assert.False(t, strings.ContainsAny(pw, "O0Il1"))
}
