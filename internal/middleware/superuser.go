package middleware

import (
	"net/http"

	"finledger/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireSuperuser gates endpoints behind the superuser claim. Runs
// after JWTAuth, so an unauthenticated caller never reaches it.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		isSuper, exists := c.Get("is_superuser")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Superuser claim not found in token")
			c.Abort()
			return
		}

		if super, ok := isSuper.(bool); !ok || !super {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: superuser required")
			c.Abort()
			return
		}

		c.Next()
	}
}
