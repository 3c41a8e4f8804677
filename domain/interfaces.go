package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	ActivatePhone(ctx context.Context, userID uint) error
}

// IdentityIndex resolves a canonical identity key (phone or email) to a user
type IdentityIndex interface {
	LookupUserID(ctx context.Context, identityKey string) (uint, error)
}

// AccessCodeStore owns AccessCode persistence and state transitions. Every
// mutation is atomic with respect to concurrent callers for the same identity
type AccessCodeStore interface {
	// CreateActive inserts a new active code. A pre-existing active code for
	// the same identity is atomically superseded (marked expired) in the same
	// transaction; exactly one active row per identity exists afterward.
	CreateActive(ctx context.Context, code *AccessCode) (*AccessCode, error)
	// GetActiveByIdentity returns the single active code for an identity, or
	// ErrCodeNotFound.
	GetActiveByIdentity(ctx context.Context, identityKey string) (*AccessCode, error)
	// IncrementAttempts bumps the attempt counter and returns the new count.
	// Reaching the code's max_attempts blocks it in the same atomic step, so
	// no correct-code verify can land between the charge and the lockout. It
	// only applies while the code is still active; ErrCodeNotFound means the
	// code went terminal concurrently and no attempt was charged.
	IncrementAttempts(ctx context.Context, id uint) (int, error)
	// TransitionToExpired is idempotent: applying it to an already-terminal
	// code is a no-op, not an error.
	TransitionToExpired(ctx context.Context, id uint) error
	// Consume atomically moves an active, unexpired code to consumed. Exactly
	// one concurrent caller wins; losers get ErrCodeConsumed.
	Consume(ctx context.Context, id uint) (*AccessCode, error)
	// ListByIdentity returns the audit trail for an identity, newest first.
	ListByIdentity(ctx context.Context, identityKey string, limit int) ([]*AccessCode, error)
}

// Notifier delivers a plaintext login code over an external channel (SMS or
// email). Implementations should honor ctx cancellation where the underlying
// transport allows it
type Notifier interface {
	SendLoginCode(ctx context.Context, to, code string, ttl time.Duration) error
}

// RateLimiter is a sliding-window throttle keyed by identity, consulted by
// the HTTP layer before the auth service runs
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TokenService defines token operations
type TokenService interface {
	IssuePair(userID uint, role, phone string) (string, string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, email, phone, password, role string) (*User, error)
	CreateAccessCode(ctx context.Context, rawIdentity string) (*CodeSent, error)
	VerifyAccessCode(ctx context.Context, rawIdentity, candidateCode string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
}

// PolicyService answers route authorization questions and carries the
// seed-time policy writes; rule storage is the enforcer's concern
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}
