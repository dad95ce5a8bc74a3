package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "storefront"}
}

func TestMintAndParseToken(t *testing.T) {
	cfg := testAuthConfig()
	id := Identity{UserID: uuid.New(), Role: "admin"}

	token, err := MintToken(cfg, time.Now(), time.Hour, id)
	require.NoError(t, err)

	parsed, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, parsed.UserID)
	assert.True(t, parsed.IsAdmin())
}

func TestParseToken_DefaultsRole(t *testing.T) {
	cfg := testAuthConfig()
	token, err := MintToken(cfg, time.Now(), time.Hour, Identity{UserID: uuid.New()})
	require.NoError(t, err)

	parsed, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "customer", parsed.Role)
	assert.False(t, parsed.IsAdmin())
}

func TestParseToken_Expired(t *testing.T) {
	cfg := testAuthConfig()
	token, err := MintToken(cfg, time.Now().Add(-2*time.Hour), time.Hour, Identity{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := MintToken(testAuthConfig(), time.Now(), time.Hour, Identity{UserID: uuid.New()})
	require.NoError(t, err)

	other := config.AuthConfig{JWTSecret: "other", JWTIssuer: "storefront"}
	_, err = ParseToken(other, token)
	assert.Error(t, err)
}

func TestParseToken_WrongIssuer(t *testing.T) {
	token, err := MintToken(testAuthConfig(), time.Now(), time.Hour, Identity{UserID: uuid.New()})
	require.NoError(t, err)

	other := config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "someone-else"}
	_, err = ParseToken(other, token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}
