package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/medibook-api/config"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:      "test-access-secret",
		Issuer:         "test-issuer",
		Audience:       "test-audience",
		AccessTokenTTL: 5 * time.Hour,
	}
}

func TestNewJWTIssuerRejectsEmptySecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.SecretKey = "  "
	_, err := NewJWTIssuer(cfg)
	assert.ErrorIs(t, err, types.ErrTokenSigning)
}

func TestIssueEncodesIdentityAndRole(t *testing.T) {
	issuedAt := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	issuer, err := NewJWTIssuer(testJWTConfig(), WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", types.RoleNurse)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(5*time.Hour), expiresAt)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", claims.UserID)
	assert.Equal(t, types.RoleNurse, claims.Role)
	assert.Equal(t, "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", claims.Subject)
	assert.Equal(t, expiresAt, claims.ExpiresAt.Time.UTC())
}

func TestIssueRejectsMissingClaims(t *testing.T) {
	issuer, err := NewJWTIssuer(testJWTConfig())
	require.NoError(t, err)

	_, _, err = issuer.Issue("", types.RolePatient)
	assert.ErrorIs(t, err, types.ErrTokenSigning)

	_, _, err = issuer.Issue("id", types.Role("superuser"))
	assert.ErrorIs(t, err, types.ErrTokenSigning)
}

func TestVerifyHonoursFiveHourWindow(t *testing.T) {
	issuedAt := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	now := issuedAt
	issuer, err := NewJWTIssuer(testJWTConfig(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	token, _, err := issuer.Issue("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", types.RolePatient)
	require.NoError(t, err)

	for _, offset := range []time.Duration{0, time.Hour, 4*time.Hour + 59*time.Minute + 59*time.Second} {
		now = issuedAt.Add(offset)
		_, err := issuer.Verify(token)
		assert.NoError(t, err, "offset %s", offset)
	}

	for _, offset := range []time.Duration{5 * time.Hour, 5*time.Hour + time.Second, 24 * time.Hour} {
		now = issuedAt.Add(offset)
		_, err := issuer.Verify(token)
		assert.True(t, errors.Is(err, jwt.ErrTokenExpired), "offset %s: %v", offset, err)
	}
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	issuer, err := NewJWTIssuer(testJWTConfig())
	require.NoError(t, err)

	t.Run("OtherAudience", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Audience = "mobile"
		other, err := NewJWTIssuer(cfg)
		require.NoError(t, err)
		token, _, err := other.Issue("id-1", types.RolePatient)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := types.Claims{
			UserID: "id-1",
			Role:   types.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Audience:  jwt.ClaimStrings{"test-audience"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.Error(t, err)
	})
}
