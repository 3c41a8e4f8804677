package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/classauth/domain"
)

// MockAccessCodeStore implements domain.AccessCodeStore for testing. The
// default behaviors maintain an in-memory store that honors the same
// transition rules as the real repository, guarded by a mutex.
type MockAccessCodeStore struct {
	CreateActiveFunc        func(ctx context.Context, code *domain.AccessCode) (*domain.AccessCode, error)
	GetActiveByIdentityFunc func(ctx context.Context, identityKey string) (*domain.AccessCode, error)
	IncrementAttemptsFunc   func(ctx context.Context, id uint) (int, error)
	TransitionToExpiredFunc func(ctx context.Context, id uint) error
	ConsumeFunc             func(ctx context.Context, id uint) (*domain.AccessCode, error)
	ListByIdentityFunc      func(ctx context.Context, identityKey string, limit int) ([]*domain.AccessCode, error)

	mu     sync.Mutex
	codes  map[uint]*domain.AccessCode
	nextID uint
}

// NewMockAccessCodeStore creates a new MockAccessCodeStore with default behaviors
func NewMockAccessCodeStore() *MockAccessCodeStore {
	return &MockAccessCodeStore{
		codes:  make(map[uint]*domain.AccessCode),
		nextID: 1,
	}
}

// Get returns a stored code by ID for test assertions
func (m *MockAccessCodeStore) Get(id uint) *domain.AccessCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[id]; ok {
		copied := *c
		return &copied
	}
	return nil
}

// CreateActive inserts a new active code, superseding any prior active one
func (m *MockAccessCodeStore) CreateActive(ctx context.Context, code *domain.AccessCode) (*domain.AccessCode, error) {
	if m.CreateActiveFunc != nil {
		return m.CreateActiveFunc(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.IdentityKey == code.IdentityKey && c.Status == domain.CodeStatusActive {
			c.Status = domain.CodeStatusExpired
		}
	}
	stored := *code
	stored.ID = m.nextID
	stored.Status = domain.CodeStatusActive
	m.nextID++
	m.codes[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

// GetActiveByIdentity returns the single active code for an identity
func (m *MockAccessCodeStore) GetActiveByIdentity(ctx context.Context, identityKey string) (*domain.AccessCode, error) {
	if m.GetActiveByIdentityFunc != nil {
		return m.GetActiveByIdentityFunc(ctx, identityKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.IdentityKey == identityKey && c.Status == domain.CodeStatusActive {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

// IncrementAttempts bumps the attempt counter while the code is active,
// blocking the code in the same step when the counter reaches max_attempts
func (m *MockAccessCodeStore) IncrementAttempts(ctx context.Context, id uint) (int, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok || c.Status != domain.CodeStatusActive {
		return 0, domain.ErrCodeNotFound
	}
	c.Attempts++
	if c.Attempts >= c.MaxAttempts {
		c.Status = domain.CodeStatusBlocked
	}
	return c.Attempts, nil
}

// TransitionToExpired expires an active code; terminal codes are untouched
func (m *MockAccessCodeStore) TransitionToExpired(ctx context.Context, id uint) error {
	if m.TransitionToExpiredFunc != nil {
		return m.TransitionToExpiredFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[id]; ok && c.Status == domain.CodeStatusActive {
		c.Status = domain.CodeStatusExpired
	}
	return nil
}

// Consume atomically moves an active, unexpired code to consumed
func (m *MockAccessCodeStore) Consume(ctx context.Context, id uint) (*domain.AccessCode, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok || c.Status != domain.CodeStatusActive || !c.ExpiresAt.After(time.Now()) {
		return nil, domain.ErrCodeConsumed
	}
	now := time.Now()
	c.Status = domain.CodeStatusConsumed
	c.ConsumedAt = &now
	copied := *c
	return &copied, nil
}

// ListByIdentity returns all codes for an identity, newest first
func (m *MockAccessCodeStore) ListByIdentity(ctx context.Context, identityKey string, limit int) ([]*domain.AccessCode, error) {
	if m.ListByIdentityFunc != nil {
		return m.ListByIdentityFunc(ctx, identityKey, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AccessCode
	for id := m.nextID; id > 0; id-- {
		c, ok := m.codes[id]
		if !ok || c.IdentityKey != identityKey {
			continue
		}
		copied := *c
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Compile-time interface compliance verification
var _ domain.AccessCodeStore = (*MockAccessCodeStore)(nil)
