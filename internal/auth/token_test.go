package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 60)

	token, expiresAt, err := manager.GenerateToken(42)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ActorID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken(42)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	manager := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}

	token, _, err := manager.GenerateToken(42)
	require.NoError(t, err)

	_, err = manager.ParseToken(token)
	assert.Error(t, err)
}

func TestHashKeyVerifiesWithBcrypt(t *testing.T) {
	hash, err := HashKey("storefront-key", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "storefront-key", hash)

	middleware := NewAPIKeyMiddleware(hash)
	assert.NotNil(t, middleware)
}

func TestHashKeyHonorsConfiguredCost(t *testing.T) {
	hash, err := HashKey("storefront-key", 6)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 6, cost)
}
