package domain

import "time"

// User represents a user in the system
type User struct {
	ID            uint
	Email         string
	Phone         string
	PasswordHash  string `gorm:"column:password"`
	Role          string
	IsActive      bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CodeStatus is the lifecycle state of an AccessCode
type CodeStatus string

const (
	CodeStatusPending  CodeStatus = "pending"
	CodeStatusActive   CodeStatus = "active"
	CodeStatusConsumed CodeStatus = "consumed"
	CodeStatusExpired  CodeStatus = "expired"
	CodeStatusBlocked  CodeStatus = "blocked"
)

// IsTerminal reports whether no further state transitions are possible
func (s CodeStatus) IsTerminal() bool {
	return s == CodeStatusConsumed || s == CodeStatusExpired || s == CodeStatusBlocked
}

// AccessCode represents one issued login-code challenge. The plaintext code
// is never persisted; CodeHash is HMAC-SHA256(identityKey + ":" + code), hex
type AccessCode struct {
	ID          uint
	IdentityKey string
	UserID      uint
	CodeHash    string
	Status      CodeStatus
	Attempts    int
	MaxAttempts int
	SentAt      time.Time
	ExpiresAt   time.Time
	ConsumedAt  *time.Time
}

// IsExpired reports whether the code's TTL has elapsed at the given instant
func (c *AccessCode) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// CodeSent is the opaque acknowledgment returned after a code was dispatched.
// It carries no secret material
type CodeSent struct {
	RequestID string
	ExpiresAt time.Time
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	Phone        string `json:"phone,omitempty"`
	TokenVersion int    `json:"token_version,omitempty"`
	IssuedAt     int64  `json:"iat"`
	ExpiresAt    int64  `json:"exp"`
}
