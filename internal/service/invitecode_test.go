package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orientation-api/internal/domain"
)

type fakeCodes map[string]bool

func (f fakeCodes) InviteCodeExists(_ context.Context, code string) (bool, error) {
	return f[code], nil
}

type failingCodes struct{}

func (failingCodes) InviteCodeExists(context.Context, string) (bool, error) {
	return false, errors.New("failed to check invite code: db down")
}

func TestRandomInviteCodeFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := randomInviteCode()
		require.NoError(t, err)
		assert.True(t, IsValidInviteCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestGenerateSkipsTakenCodes(t *testing.T) {
	seq := []string{"AAAAAA", "BBBBBB", "CCCCCC"}
	i := 0
	g := &InviteCodeGenerator{MaxAttempts: 5, Random: func() (string, error) {
		c := seq[i]
		i++
		return c, nil
	}}

	code, err := g.Generate(context.Background(), fakeCodes{"AAAAAA": true, "BBBBBB": true})
	require.NoError(t, err)
	assert.Equal(t, "CCCCCC", code)
	assert.Equal(t, 3, i)
}

func TestGenerateExhausted(t *testing.T) {
	calls := 0
	g := &InviteCodeGenerator{MaxAttempts: 4, Random: func() (string, error) {
		calls++
		return "AAAAAA", nil
	}}

	_, err := g.Generate(context.Background(), fakeCodes{"AAAAAA": true})
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
	assert.Equal(t, 4, calls)
}

func TestGeneratePropagatesLookupError(t *testing.T) {
	_, err := NewInviteCodeGenerator().Generate(context.Background(), failingCodes{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGenerationExhausted)
}

func TestInviteCodeFormat(t *testing.T) {
	assert.Equal(t, "7K2PQ9", NormalizeInviteCode(" 7k2pq9\n"))
	assert.True(t, IsValidInviteCode("7K2PQ9"))
	assert.False(t, IsValidInviteCode("7k2pq9"))
	assert.False(t, IsValidInviteCode("7K2PQ"))
	assert.False(t, IsValidInviteCode("7K2PQ90"))
	assert.False(t, IsValidInviteCode("7K2 Q9"))
	assert.False(t, IsValidInviteCode(""))
}
