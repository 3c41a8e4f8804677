package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/classauth/domain"
)

// refreshTokenVersion is embedded in refresh tokens for future revocation
// support. Bumping it invalidates every outstanding refresh token.
const refreshTokenVersion = 1

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	secretKey       []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, issuer string, accessTTL, refreshTTL time.Duration) *JWTServiceImpl {
	return &JWTServiceImpl{
		secretKey:       []byte(secretKey),
		issuer:          issuer,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

// generateJTI creates a unique JWT ID
func (j *JWTServiceImpl) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// IssuePair implements domain.TokenService. Both tokens are HS256-signed with
// the same symmetric secret; the refresh token additionally carries a
// token_version claim.
func (j *JWTServiceImpl) IssuePair(userID uint, role, phone string) (string, string, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":   userID,
		"role":  role,
		"phone": phone,
		"iss":   j.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(j.accessTokenTTL).Unix(),
		"jti":   j.generateJTI(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(j.secretKey)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":           userID,
		"role":          role,
		"phone":         phone,
		"token_version": refreshTokenVersion,
		"iss":           j.issuer,
		"iat":           now.Unix(),
		"exp":           now.Add(j.refreshTokenTTL).Unix(),
		"jti":           j.generateJTI(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(j.secretKey)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAccessToken implements domain.TokenService. A refresh token is not
// an access token: the token_version claim marks it and gets it rejected here.
func (j *JWTServiceImpl) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	claims, err := j.validateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenVersion != 0 {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// ValidateRefreshToken implements domain.TokenService. Only tokens carrying a
// token_version claim are refresh tokens; an access token presented here is
// rejected.
func (j *JWTServiceImpl) ValidateRefreshToken(tokenString string) (*domain.TokenClaims, error) {
	claims, err := j.validateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenVersion == 0 {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// validateToken validates a JWT token and returns claims. A token with a
// valid signature but missing required claims is rejected as malformed.
func (j *JWTServiceImpl) validateToken(tokenString string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return j.secretKey, nil
	})

	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	// Extract required claims. The subject is the user ID; tokens minted
	// elsewhere without it are rejected even when well-signed.
	userID, ok := claims["sub"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	// Check expiration
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrTokenExpired
	}

	tokenClaims := &domain.TokenClaims{
		UserID:    uint(userID),
		Role:      role,
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}

	if phone, ok := claims["phone"].(string); ok {
		tokenClaims.Phone = phone
	}
	if version, ok := claims["token_version"].(float64); ok {
		tokenClaims.TokenVersion = int(version)
	}

	return tokenClaims, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*JWTServiceImpl)(nil)
