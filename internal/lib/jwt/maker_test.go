package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

const testSecret = "test_secret_key_1234567890"

func newTestMaker(t *testing.T, secret string, ttl time.Duration) *MakerImpl {
	t.Helper()
	maker, err := NewJWTMaker(secret, ttl)
	require.NoError(t, err)
	return maker
}

func TestNewJWTMaker_EmptySecret(t *testing.T) {
	maker, err := NewJWTMaker("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.Nil(t, maker)
}

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	maker := newTestMaker(t, testSecret, 0)

	tests := []struct {
		name   string
		userID string
	}{
		{name: "uuid id", userID: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "numeric id", userID: "42"},
		{name: "email-like id", userID: "user@domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.Nil(t, claims.ExpiresAt, "zero ttl issues time-unbounded tokens")

			id, err := maker.UserID(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, id)
		})
	}
}

func TestJWTMaker_WithTTL(t *testing.T) {
	ttl := 15 * time.Minute
	maker := newTestMaker(t, testSecret, ttl)

	token, err := maker.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(ttl), claims.ExpiresAt.Time, time.Second)
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := newTestMaker(t, testSecret, 0)

	validToken, err := maker.GenerateToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createExpiredToken(t)},
		{name: "wrong secret key", token: createTokenWithWrongSecret(t)},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "token without id", token: createTokenWithoutID(t)},
		{name: "none algorithm", token: createUnsignedToken(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.ErrorIs(t, err, models.ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := newTestMaker(t, "first_secret_key", 0)
	maker2 := newTestMaker(t, "different_secret_key", 0)

	token, err := maker1.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = maker2.UserID(token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	id, err := maker1.UserID(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func createExpiredToken(t *testing.T) string {
	maker := newTestMaker(t, testSecret, -time.Hour)
	token, err := maker.GenerateToken("user-1")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := newTestMaker(t, "wrong_secret_key", 0)
	token, err := wrongMaker.GenerateToken("user-1")
	require.NoError(t, err)
	return token
}

func createTokenWithoutID(t *testing.T) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func createUnsignedToken(t *testing.T) string {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{UserID: "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return signed
}
