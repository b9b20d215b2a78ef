package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulse-reports/backend/internal/identity"
)

// Logger returns a zap-based request logging middleware. When the request is
// authenticated, the tenant id is included so per-tenant traffic can be traced.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
		}
		if id, ok := identity.FromGin(c); ok {
			fields = append(fields, zap.String("tenant_id", id.TenantID.String()))
		}
		logger.Info("request", fields...)
	}
}
