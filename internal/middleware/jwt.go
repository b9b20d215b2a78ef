package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulse-reports/backend/internal/auth"
	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/pkg/response"
)

// revocationTimeout bounds the denylist lookup so a slow Redis degrades to an
// explicit AuthUnavailable instead of hanging the request.
const revocationTimeout = 2 * time.Second

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWT returns a middleware that authenticates the request: it extracts the
// bearer token, verifies it, checks the revocation denylist, and enriches the
// request with the verified identity. Every failure is a 401 with a
// machine-readable code; any store failure fails closed.
func JWT(tokens *auth.TokenService, revoked RevocationChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, response.CodeMissingCredential, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeMissingCredential, "authorization header must be of the form 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			code := verifyCode(err)
			logger.Info("token rejected", zap.String("code", code), zap.Error(err))
			response.Unauthorized(c, code, "invalid or expired token")
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			logger.Info("token rejected", zap.String("code", response.CodeMalformed), zap.Error(err))
			response.Unauthorized(c, response.CodeMalformed, "invalid or expired token")
			c.Abort()
			return
		}

		if revoked != nil {
			rctx, cancel := context.WithTimeout(c.Request.Context(), revocationTimeout)
			isRevoked, err := revoked.IsRevoked(rctx, claims.ID)
			cancel()
			if err != nil {
				logger.Error("revocation store unavailable", zap.Error(err))
				response.Unauthorized(c, response.CodeAuthUnavailable, "authentication temporarily unavailable")
				c.Abort()
				return
			}
			if isRevoked {
				response.Unauthorized(c, response.CodeRevoked, "invalid or expired token")
				c.Abort()
				return
			}
		}

		id := identity.Identity{
			UserID:   userID,
			TenantID: claims.TenantID.ID,
			Email:    claims.Email,
			Role:     claims.Role,
			IsAdmin:  claims.Admin(),
		}
		c.Set(identity.GinKey, id)
		c.Set(identity.ClaimsKey, claims)
		c.Request = c.Request.WithContext(identity.WithContext(c.Request.Context(), id))
		c.Next()
	}
}

// verifyCode maps a codec failure to its response code. Unknown failures map
// to Malformed so an unexpected error can never grant access.
func verifyCode(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return response.CodeExpired
	case errors.Is(err, auth.ErrBadSignature):
		return response.CodeBadSignature
	case errors.Is(err, auth.ErrTenantMissing):
		return response.CodeTenantMissing
	default:
		return response.CodeMalformed
	}
}
