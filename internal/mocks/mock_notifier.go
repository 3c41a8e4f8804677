package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/classauth/domain"
)

// SentCode records one delivery observed by MockNotifier
type SentCode struct {
	To   string
	Code string
	TTL  time.Duration
}

// MockNotifier implements domain.Notifier for testing and records every
// delivered code so tests can replay it
type MockNotifier struct {
	SendLoginCodeFunc func(ctx context.Context, to, code string, ttl time.Duration) error

	mu   sync.Mutex
	sent []SentCode
}

// NewMockNotifier creates a new MockNotifier with default behaviors
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SendLoginCode delivers a login code
func (m *MockNotifier) SendLoginCode(ctx context.Context, to, code string, ttl time.Duration) error {
	if m.SendLoginCodeFunc != nil {
		if err := m.SendLoginCodeFunc(ctx, to, code, ttl); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentCode{To: to, Code: code, TTL: ttl})
	return nil
}

// Sent returns every recorded delivery
func (m *MockNotifier) Sent() []SentCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentCode, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastCode returns the most recently delivered code, or ""
func (m *MockNotifier) LastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Code
}

// Compile-time interface compliance verification
var _ domain.Notifier = (*MockNotifier)(nil)
