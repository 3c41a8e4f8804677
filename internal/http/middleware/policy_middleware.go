package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/classauth/domain"
)

// PolicyMiddleware enforces role-based access on the routes it wraps, using
// the policy service's (role, path, method) rules.
func PolicyMiddleware(policySvc domain.PolicyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		allowed, err := policySvc.CheckPermission("role_"+role.(string), c.Request.URL.Path, c.Request.Method)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
