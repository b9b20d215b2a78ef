package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/pkg/response"
)

// RequireAdmin returns a middleware that allows only administrators. It must
// run after JWT; a request with no identity is rejected, not passed through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity.FromGin(c)
		if !ok {
			response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
			c.Abort()
			return
		}
		if err := identity.RequireAdmin(id); err != nil {
			response.Forbidden(c, response.CodeForbidden, "administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
