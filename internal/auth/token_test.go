package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret-a", 5)

	token, expiresAt, err := tm.GenerateToken("principal-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	principalID, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "principal-42", principalID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 5)
	verifier := NewTokenManager("secret-b", 5)

	token, _, err := issuer.GenerateToken("principal-42")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret-a", 5)

	_, err := tm.ParseToken("not-a-token")
	require.Error(t, err)
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("hunter2", 99)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hash, "hunter2"))
	require.Error(t, ComparePassword(hash, "wrong"))
}
