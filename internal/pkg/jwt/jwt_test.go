package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret        = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "jdoe", "VIEWER", testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "VIEWER", claims.Role)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.Equal(t, "jdoe", claims.Subject)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "jdoe", "ADMIN", testSecret, 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "some-other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpiry(t *testing.T) {
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return issued }
	defer func() { timeNow = time.Now }()

	token, err := GenerateAccessToken(7, "auditor1", "AUDITOR", testSecret, 15)
	require.NoError(t, err)

	// still valid one minute before expiry
	timeNow = func() time.Time { return issued.Add(14 * time.Minute) }
	_, err = ValidateAccessToken(token, testSecret)
	assert.NoError(t, err)

	// expired exactly at issued-at + lifetime
	timeNow = func() time.Time { return issued.Add(15*time.Minute + time.Second) }
	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "token-id-1", testRefreshSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testRefreshSecret)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
	assert.Equal(t, TypeRefresh, claims.TokenType)
}

func TestRefreshTokenExpiry(t *testing.T) {
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return issued }
	defer func() { timeNow = time.Now }()

	token, err := GenerateRefreshToken(7, "token-id-2", testRefreshSecret, 7)
	require.NoError(t, err)

	timeNow = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	_, err = ValidateRefreshToken(token, testRefreshSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTypeIsEnforced(t *testing.T) {
	access, err := GenerateAccessToken(1, "jdoe", "VIEWER", testSecret, 15)
	require.NoError(t, err)

	// an access token presented as a refresh token must be rejected even
	// when signed with the refresh secret's verifier
	_, err = ValidateRefreshToken(access, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	refresh, err := GenerateRefreshToken(1, "tid", testSecret, 7)
	require.NoError(t, err)
	_, err = ValidateAccessToken(refresh, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
