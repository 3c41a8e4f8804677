package domain

import "errors"

// Identity errors
var (
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrUserNotFound    = errors.New("user not found")
)

// Access-code errors. Verification handlers must render all of these with the
// same low-information message so callers cannot enumerate account state
var (
	ErrInvalidCode  = errors.New("invalid access code")
	ErrCodeNotFound = errors.New("no active access code")
	ErrCodeExpired  = errors.New("access code has expired")
	ErrCodeBlocked  = errors.New("maximum verification attempts exceeded")
	ErrCodeConsumed = errors.New("access code already used")
)

// Delivery errors
var (
	ErrDeliveryFailed = errors.New("failed to deliver access code")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Account errors
var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrPhoneNotVerified   = errors.New("phone number not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Throttling errors
var (
	ErrRateLimited = errors.New("too many requests")
)

// Authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInsufficientRole = errors.New("insufficient role permissions")
)
