package mocks

import (
	"context"
	"time"

	"github.com/you/classauth/domain"
)

// MockRateLimiter implements domain.RateLimiter for testing. The default
// behavior admits everything.
type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// NewMockRateLimiter creates a new MockRateLimiter with default behaviors
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

// Allow reports whether the caller may proceed
func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

// Compile-time interface compliance verification
var _ domain.RateLimiter = (*MockRateLimiter)(nil)
