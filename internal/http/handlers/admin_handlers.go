package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/you/classauth/domain"
)

// AdminHandlers exposes the access-code audit trail to administrators.
// Responses never include code hashes or plaintext codes.
type AdminHandlers struct {
	codeStore domain.AccessCodeStore
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(codeStore domain.AccessCodeStore) *AdminHandlers {
	return &AdminHandlers{codeStore: codeStore}
}

// ListCodes lists the audit trail for one identity, newest first
func (h *AdminHandlers) ListCodes(c *gin.Context) {
	identityKey := c.Query("identity")
	if identityKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity query parameter is required"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	codes, err := h.codeStore.ListByIdentity(c.Request.Context(), identityKey, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list codes"})
		return
	}

	entries := make([]gin.H, 0, len(codes))
	for _, code := range codes {
		entries = append(entries, gin.H{
			"id":           code.ID,
			"identity_key": code.IdentityKey,
			"user_id":      code.UserID,
			"status":       code.Status,
			"attempts":     code.Attempts,
			"max_attempts": code.MaxAttempts,
			"sent_at":      code.SentAt,
			"expires_at":   code.ExpiresAt,
			"consumed_at":  code.ConsumedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"codes": entries}})
}
