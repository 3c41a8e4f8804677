package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/you/classauth/domain"
	"github.com/you/classauth/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performAuthed(tokenSvc domain.TokenService, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	var captured *gin.Context

	router := gin.New()
	router.GET("/protected", AuthMiddleware(tokenSvc), func(c *gin.Context) {
		captured = c
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, captured
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		assert.Equal(t, "good-token", token)
		return &domain.TokenClaims{UserID: 7, Role: "teacher"}, nil
	}

	w, c := performAuthed(tokenSvc, "Bearer good-token")

	assert.Equal(t, http.StatusOK, w.Code)
	userID, _ := c.Get("user_id")
	assert.Equal(t, uint(7), userID)
	role, _ := c.Get("user_role")
	assert.Equal(t, "teacher", role)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	w, _ := performAuthed(mocks.NewMockTokenService(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	for _, header := range []string{"good-token", "Basic good-token", "Bearer"} {
		w, _ := performAuthed(mocks.NewMockTokenService(), header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenInvalid
	}

	w, _ := performAuthed(tokenSvc, "Bearer tampered")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenExpired
	}

	w, _ := performAuthed(tokenSvc, "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}
