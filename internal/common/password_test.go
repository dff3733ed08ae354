package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, CheckPassword("correct horse battery", hash))
	assert.Error(t, CheckPassword("wrong password", hash))
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "moderator", true)
	require.NoError(t, err)

	claims, err := ValidToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "moderator", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestValidTokenRejectsGarbage(t *testing.T) {
	_, err := ValidToken("not.a.token")
	assert.Error(t, err)
}
