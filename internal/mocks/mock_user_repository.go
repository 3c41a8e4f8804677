package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/you/classauth/domain"
)

// MockUserRepository implements domain.UserRepository and domain.IdentityIndex
// for testing, backed by an in-memory map
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *domain.User) error
	FindByEmailFunc   func(ctx context.Context, email string) (*domain.User, error)
	FindByPhoneFunc   func(ctx context.Context, phone string) (*domain.User, error)
	FindByIDFunc      func(ctx context.Context, id uint) (*domain.User, error)
	UpdateFunc        func(ctx context.Context, user *domain.User) error
	ActivatePhoneFunc func(ctx context.Context, userID uint) error
	LookupUserIDFunc  func(ctx context.Context, identityKey string) (uint, error)

	mu     sync.Mutex
	users  map[uint]*domain.User
	nextID uint
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*domain.User),
		nextID: 1,
	}
}

// AddUser seeds a user into the in-memory store
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
}

// Create stores a user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindByPhone finds a user by phone
func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// Update updates a user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

// ActivatePhone marks the user's phone as verified
func (m *MockUserRepository) ActivatePhone(ctx context.Context, userID uint) error {
	if m.ActivatePhoneFunc != nil {
		return m.ActivatePhoneFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.PhoneVerified = true
		return nil
	}
	return domain.ErrUserNotFound
}

// LookupUserID resolves a canonical identity key to a user ID
func (m *MockUserRepository) LookupUserID(ctx context.Context, identityKey string) (uint, error) {
	if m.LookupUserIDFunc != nil {
		return m.LookupUserIDFunc(ctx, identityKey)
	}
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identityKey, "@") {
		user, err = m.FindByEmail(ctx, identityKey)
	} else {
		user, err = m.FindByPhone(ctx, identityKey)
	}
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Compile-time interface compliance verification
var (
	_ domain.UserRepository = (*MockUserRepository)(nil)
	_ domain.IdentityIndex  = (*MockUserRepository)(nil)
)
