package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("matkhau123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "matkhau123", hash)
}

func TestHashPassword_TooLong(t *testing.T) {
	long := make([]byte, maxPasswordBytes+1)
	for i := range long {
		long[i] = 'a'
	}

	_, err := HashPassword(string(long))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("matkhau123")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "matkhau123"))
	assert.False(t, VerifyPassword(hash, "saimatkhau"))
	assert.False(t, VerifyPassword("not-a-hash", "matkhau123"))
}
