package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("user-1", "user@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseAndValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims["userId"])
	assert.Equal(t, "user@example.com", claims["email"])
}

func TestParseTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateToken("user-1", "user@example.com")
	assert.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	_, err = ParseAndValidateToken(token)
	assert.Error(t, err)
}

func TestParseGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ParseAndValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenWithoutSecretConfigured(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateToken("user-1", "user@example.com")
	assert.Error(t, err)
}
