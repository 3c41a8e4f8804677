package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/classauth/domain"
)

const testJWTSecret = "test-secret-key-for-jwt-signing"

func newTestJWTService() *JWTServiceImpl {
	return NewJWTService(testJWTSecret, "classauth", 15*time.Minute, 30*24*time.Hour)
}

func TestIssuePair_AccessTokenClaims(t *testing.T) {
	svc := newTestJWTService()

	access, refresh, err := svc.IssuePair(42, "teacher", "+84901234567")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, "+84901234567", claims.Phone)
	assert.Equal(t, 0, claims.TokenVersion)

	// Access token expires ~15 minutes out.
	ttl := time.Unix(claims.ExpiresAt, 0).Sub(time.Unix(claims.IssuedAt, 0))
	assert.Equal(t, 15*time.Minute, ttl)
}

func TestIssuePair_RefreshTokenCarriesVersion(t *testing.T) {
	svc := newTestJWTService()

	_, refresh, err := svc.IssuePair(42, "teacher", "+84901234567")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, refreshTokenVersion, claims.TokenVersion)

	ttl := time.Unix(claims.ExpiresAt, 0).Sub(time.Unix(claims.IssuedAt, 0))
	assert.Equal(t, 30*24*time.Hour, ttl)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService("a-completely-different-secret", "classauth", 15*time.Minute, 30*24*time.Hour)

	access, _, err := svc.IssuePair(42, "teacher", "")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.ValidateAccessToken("")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(testJWTSecret, "classauth", -time.Minute, -time.Minute)

	access, _, err := svc.IssuePair(42, "teacher", "")
	require.NoError(t, err)

	// jwt.Parse rejects the expired exp claim before our own check runs, so
	// the caller sees the generic invalid-token error.
	_, err = svc.ValidateAccessToken(access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_MissingRequiredClaims(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()

	// Well-signed tokens that never went through IssuePair.
	cases := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"no role", jwt.MapClaims{
			"sub": 42,
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		}},
		{"no subject", jwt.MapClaims{
			"role": "teacher",
			"iat":  now.Unix(),
			"exp":  now.Add(time.Hour).Unix(),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc.claims).SignedString([]byte(testJWTSecret))
			require.NoError(t, err)

			_, err = svc.ValidateAccessToken(token)
			assert.ErrorIs(t, err, domain.ErrTokenMalformed)
		})
	}
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	svc := newTestJWTService()

	access, _, err := svc.IssuePair(42, "teacher", "")
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	svc := newTestJWTService()

	_, refresh, err := svc.IssuePair(42, "teacher", "")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateToken_RejectsNonHMACAlg(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()

	// alg=none with an empty signature must not validate.
	claims := jwt.MapClaims{
		"sub":  42,
		"role": "teacher",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
