package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	h, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword("password123", h))
	assert.False(t, CheckPassword("password124", h))
	assert.False(t, CheckPassword("password123", ""))

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestIDs(t *testing.T) {
	id := NewID()
	assert.True(t, IsUUID(id))
	assert.True(t, IsUUID(" "+id+" "))
	assert.False(t, IsUUID("not-a-uuid"))
	assert.False(t, IsUUID(""))
}
