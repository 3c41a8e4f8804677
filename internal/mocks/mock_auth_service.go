package mocks

import (
	"context"

	"github.com/you/classauth/domain"
)

// MockAuthService implements domain.AuthService for handler testing
type MockAuthService struct {
	RegisterFunc         func(ctx context.Context, email, phone, password, role string) (*domain.User, error)
	CreateAccessCodeFunc func(ctx context.Context, rawIdentity string) (*domain.CodeSent, error)
	VerifyAccessCodeFunc func(ctx context.Context, rawIdentity, candidateCode string) (*domain.AuthResult, error)
	LoginFunc            func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	RefreshTokenFunc     func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	GetUserProfileFunc   func(ctx context.Context, userID uint) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Register registers a user
func (m *MockAuthService) Register(ctx context.Context, email, phone, password, role string) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, phone, password, role)
	}
	return &domain.User{ID: 1, Email: email, Phone: phone, Role: role, IsActive: true}, nil
}

// CreateAccessCode issues a login code
func (m *MockAuthService) CreateAccessCode(ctx context.Context, rawIdentity string) (*domain.CodeSent, error) {
	if m.CreateAccessCodeFunc != nil {
		return m.CreateAccessCodeFunc(ctx, rawIdentity)
	}
	return &domain.CodeSent{RequestID: "req-1"}, nil
}

// VerifyAccessCode verifies a login code
func (m *MockAuthService) VerifyAccessCode(ctx context.Context, rawIdentity, candidateCode string) (*domain.AuthResult, error) {
	if m.VerifyAccessCodeFunc != nil {
		return m.VerifyAccessCodeFunc(ctx, rawIdentity, candidateCode)
	}
	return &domain.AuthResult{
		User:         &domain.User{ID: 1, Role: "user"},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    900,
	}, nil
}

// Login performs a password login
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &domain.AuthResult{
		User:         &domain.User{ID: 1, Email: email, Role: "user"},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    900,
	}, nil
}

// RefreshToken exchanges a refresh token for a new access token
func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return &domain.AuthResult{
		User:         &domain.User{ID: 1, Role: "user"},
		AccessToken:  "access-2",
		RefreshToken: refreshToken,
		ExpiresIn:    900,
	}, nil
}

// GetUserProfile returns a user profile
func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	return &domain.User{ID: userID, Role: "user"}, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
