package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/you/classauth/domain"
	"github.com/you/classauth/internal/identity"
	"github.com/you/classauth/internal/otp"
)

// AuthConfig carries the policy knobs for code issuance and verification.
type AuthConfig struct {
	OTPSecret      []byte
	OTPTTL         time.Duration
	OTPMaxAttempts int
	NotifyTimeout  time.Duration
}

// AuthServiceImpl implements domain.AuthService. It sequences code creation,
// delivery and verification, and re-classifies every infrastructure error
// into a domain sentinel before it crosses this boundary.
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	identityIdx domain.IdentityIndex
	codeStore   domain.AccessCodeStore
	notifier    domain.Notifier
	tokenSvc    domain.TokenService
	passwordSvc domain.PasswordService
	normalizer  *identity.Normalizer
	config      AuthConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	identityIdx domain.IdentityIndex,
	codeStore domain.AccessCodeStore,
	notifier domain.Notifier,
	tokenSvc domain.TokenService,
	passwordSvc domain.PasswordService,
	normalizer *identity.Normalizer,
	config AuthConfig,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		identityIdx: identityIdx,
		codeStore:   codeStore,
		notifier:    notifier,
		tokenSvc:    tokenSvc,
		passwordSvc: passwordSvc,
		normalizer:  normalizer,
		config:      config,
	}
}

// CreateAccessCode implements domain.AuthService. On delivery failure the
// freshly created code is expired before the error is returned: a code the
// user never received must not stay verifiable.
func (s *AuthServiceImpl) CreateAccessCode(ctx context.Context, rawIdentity string) (*domain.CodeSent, error) {
	key, err := s.normalizer.NormalizeAny(rawIdentity)
	if err != nil {
		return nil, domain.ErrInvalidIdentity
	}

	userID, err := s.identityIdx.LookupUserID(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	code, err := otp.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now()
	record, err := s.codeStore.CreateActive(ctx, &domain.AccessCode{
		IdentityKey: key,
		UserID:      userID,
		CodeHash:    otp.Hash(key, code, s.config.OTPSecret),
		MaxAttempts: s.config.OTPMaxAttempts,
		SentAt:      now,
		ExpiresAt:   now.Add(s.config.OTPTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist access code: %w", err)
	}

	if err := s.dispatch(ctx, key, code); err != nil {
		// Compensating action: never leave an undelivered code active.
		if expErr := s.codeStore.TransitionToExpired(ctx, record.ID); expErr != nil {
			log.Printf("failed to expire undelivered code %d: %v", record.ID, expErr)
		}
		log.Printf("code delivery to %s failed: %v", key, err)
		return nil, domain.ErrDeliveryFailed
	}

	return &domain.CodeSent{
		RequestID: uuid.NewString(),
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// dispatch sends the plaintext code with a hard timeout. Delivery that hangs
// fails closed; the committed store write is compensated by the caller.
func (s *AuthServiceImpl) dispatch(ctx context.Context, key, code string) error {
	timeout := s.config.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.notifier.SendLoginCode(sendCtx, key, code, s.config.OTPTTL)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sendCtx.Done():
		return sendCtx.Err()
	}
}

// VerifyAccessCode implements domain.AuthService. Mismatch, expiry and a
// blocked code all surface as validation failures; only the handler decides
// how little of that to reveal.
func (s *AuthServiceImpl) VerifyAccessCode(ctx context.Context, rawIdentity, candidateCode string) (*domain.AuthResult, error) {
	key, err := s.normalizer.NormalizeAny(rawIdentity)
	if err != nil {
		return nil, domain.ErrInvalidIdentity
	}
	if len(candidateCode) != otp.CodeLength {
		return nil, domain.ErrInvalidCode
	}

	record, err := s.codeStore.GetActiveByIdentity(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to load access code: %w", err)
	}

	if record.IsExpired(time.Now()) {
		if err := s.codeStore.TransitionToExpired(ctx, record.ID); err != nil {
			return nil, fmt.Errorf("failed to expire access code: %w", err)
		}
		return nil, domain.ErrCodeExpired
	}

	if !otp.Verify(record.CodeHash, key, candidateCode, s.config.OTPSecret) {
		// The store blocks the code atomically when this charge reaches
		// max_attempts; there is no window for a correct-code verify between
		// the charge and the lockout.
		if _, err := s.codeStore.IncrementAttempts(ctx, record.ID); err != nil {
			// The code went terminal under a concurrent request; either way
			// this attempt fails and no counter is charged.
			if errors.Is(err, domain.ErrCodeNotFound) {
				return nil, domain.ErrInvalidCode
			}
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}
		return nil, domain.ErrInvalidCode
	}

	consumed, err := s.codeStore.Consume(ctx, record.ID)
	if err != nil {
		// Lost the consume race: another request already used this code.
		if errors.Is(err, domain.ErrCodeConsumed) {
			return nil, domain.ErrCodeConsumed
		}
		return nil, fmt.Errorf("failed to consume access code: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, consumed.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", consumed.UserID, err)
	}

	// Proving possession of the phone also verifies it.
	if !user.PhoneVerified && key == user.Phone {
		if err := s.userRepo.ActivatePhone(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to activate phone: %w", err)
		}
		user.PhoneVerified = true
	}

	return s.issueTokens(user)
}

// Register implements domain.AuthService. Identities are canonicalized before
// storage so the identity index and the code hashes agree on one key.
func (s *AuthServiceImpl) Register(ctx context.Context, email, phone, password, role string) (*domain.User, error) {
	emailKey, err := s.normalizer.Normalize(email, identity.KindEmail)
	if err != nil {
		return nil, domain.ErrInvalidIdentity
	}
	phoneKey, err := s.normalizer.Normalize(phone, identity.KindPhone)
	if err != nil {
		return nil, domain.ErrInvalidIdentity
	}

	if existing, err := s.userRepo.FindByEmail(ctx, emailKey); err == nil && existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        emailKey,
		Phone:        phoneKey,
		PasswordHash: hashedPassword,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Kick off phone verification with a login code. Sentinels pass through
	// unwrapped so the handler can map delivery failures to 502.
	if _, err := s.CreateAccessCode(ctx, phoneKey); err != nil {
		return nil, err
	}

	return user, nil
}

// Login implements domain.AuthService. The password flow is a plain
// compare-and-issue; codes are not involved.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	emailKey, err := s.normalizer.Normalize(email, identity.KindEmail)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, emailKey)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if !user.PhoneVerified {
		return nil, domain.ErrPhoneNotVerified
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshToken implements domain.AuthService. Tokens are stateless; a valid
// refresh token is exchanged for a fresh access token without any server-side
// session record.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	access, _, err := s.tokenSvc.IssuePair(user.ID, user.Role, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refreshToken, // Keep same refresh token
		ExpiresIn:    15 * 60,
	}, nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) issueTokens(user *domain.User) (*domain.AuthResult, error) {
	access, refresh, err := s.tokenSvc.IssuePair(user.ID, user.Role, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    15 * 60,
	}, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*AuthServiceImpl)(nil)
