package mocks

import (
	"fmt"
	"time"

	"github.com/you/classauth/domain"
)

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	IssuePairFunc            func(userID uint, role, phone string) (string, string, error)
	ValidateAccessTokenFunc  func(token string) (*domain.TokenClaims, error)
	ValidateRefreshTokenFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// IssuePair issues a deterministic token pair
func (m *MockTokenService) IssuePair(userID uint, role, phone string) (string, string, error) {
	if m.IssuePairFunc != nil {
		return m.IssuePairFunc(userID, role, phone)
	}
	return fmt.Sprintf("access-%d", userID), fmt.Sprintf("refresh-%d", userID), nil
}

// ValidateAccessToken validates an access token
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	return &domain.TokenClaims{
		UserID:    1,
		Role:      "user",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(15 * time.Minute).Unix(),
	}, nil
}

// ValidateRefreshToken validates a refresh token
func (m *MockTokenService) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	return &domain.TokenClaims{
		UserID:       1,
		Role:         "user",
		TokenVersion: 1,
		IssuedAt:     time.Now().Unix(),
		ExpiresAt:    time.Now().Add(30 * 24 * time.Hour).Unix(),
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
