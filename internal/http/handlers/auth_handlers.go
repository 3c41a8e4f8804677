package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/classauth/domain"
)

// RateLimitPolicy carries the per-identity throttle numbers for the two
// code endpoints. The numbers are policy, not core logic.
type RateLimitPolicy struct {
	CreateLimit  int
	CreateWindow time.Duration
	VerifyLimit  int
	VerifyWindow time.Duration
}

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc  domain.AuthService
	limiter  domain.RateLimiter
	userRepo domain.UserRepository
	policy   RateLimitPolicy
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, limiter domain.RateLimiter, userRepo domain.UserRepository, policy RateLimitPolicy) *AuthHandlers {
	return &AuthHandlers{
		authSvc:  authSvc,
		limiter:  limiter,
		userRepo: userRepo,
		policy:   policy,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SendCodeRequest represents a login-code issuance request
type SendCodeRequest struct {
	Identity string `json:"identity" binding:"required"`
}

// VerifyCodeRequest represents a login-code verification request
type VerifyCodeRequest struct {
	Identity string `json:"identity" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// RefreshRequest represents token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// rateKey normalizes the throttle key just enough to stop trivial casing and
// whitespace variations from splitting one identity across windows.
func rateKey(scope, identity string) string {
	return scope + ":" + strings.ToLower(strings.TrimSpace(identity))
}

// SendCode handles login-code issuance
func (h *AuthHandlers) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.limiter.Allow(c.Request.Context(), rateKey("code:send", req.Identity), h.policy.CreateLimit, h.policy.CreateWindow)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		return
	}
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many code requests"})
		return
	}

	sent, err := h.authSvc.CreateAccessCode(c.Request.Context(), req.Identity)
	if err != nil {
		switch err {
		case domain.ErrInvalidIdentity:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number or email"})
		case domain.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Identity is not registered"})
		case domain.ErrDeliveryFailed:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to deliver code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":    "Code sent successfully",
			"request_id": sent.RequestID,
			"expires_at": sent.ExpiresAt,
		},
	})
}

// VerifyCode handles login-code verification. All validation-class failures
// share one message so callers cannot tell mismatch from expiry or lockout.
func (h *AuthHandlers) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.limiter.Allow(c.Request.Context(), rateKey("code:verify", req.Identity), h.policy.VerifyLimit, h.policy.VerifyWindow)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many verification attempts"})
		return
	}

	result, err := h.authSvc.VerifyAccessCode(c.Request.Context(), req.Identity, req.Code)
	if err != nil {
		switch err {
		case domain.ErrCodeConsumed:
			c.JSON(http.StatusConflict, gin.H{"error": "Code already used"})
		case domain.ErrInvalidIdentity, domain.ErrInvalidCode, domain.ErrCodeNotFound,
			domain.ErrCodeExpired, domain.ErrCodeBlocked:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    result.ExpiresIn,
			"user": gin.H{
				"id":    result.User.ID,
				"email": result.User.Email,
				"role":  result.User.Role,
			},
		},
	})
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Phone, req.Password, role)
	if err != nil {
		switch err {
		case domain.ErrUserAlreadyExists:
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		case domain.ErrInvalidIdentity:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number or email"})
		case domain.ErrDeliveryFailed:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to deliver verification code"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"message": "User registered successfully. Please verify your phone number.",
			"user_id": user.ID,
		},
	})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrInvalidCredentials:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case domain.ErrUserInactive:
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
		case domain.ErrPhoneNotVerified:
			c.JSON(http.StatusForbidden, gin.H{"error": "Phone number not verified"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    result.ExpiresIn,
			"user": gin.H{
				"id":    result.User.ID,
				"email": result.User.Email,
				"role":  result.User.Role,
			},
		},
	})
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case domain.ErrTokenInvalid, domain.ErrTokenExpired:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		case domain.ErrUserNotFound:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
		},
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandlers) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), userID.(uint))
	if err != nil {
		if err == domain.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":             user.ID,
			"email":          user.Email,
			"phone":          user.Phone,
			"role":           user.Role,
			"phone_verified": user.PhoneVerified,
		},
	})
}
