// Package identity carries the verified requester identity through a request
// and holds the pure authorization predicates evaluated against it.
package identity

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulse-reports/backend/internal/models"
)

// GinKey is the gin context key under which the Identity is stored.
const GinKey = "identity"

// ClaimsKey is the gin context key under which the raw verified token claims
// are stored (needed by logout to revoke the presented token).
const ClaimsKey = "claims"

type contextKey struct{}

// Authorization failures.
var (
	ErrForbidden      = errors.New("administrator capability required")
	ErrTenantMismatch = errors.New("resource belongs to another tenant")
)

// Identity is the verified requester, derived from token Claims by the auth
// middleware. It is the only permitted source of tenant id for data queries;
// handlers must never scope queries by a client-supplied tenant id.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     models.Role
	IsAdmin  bool
}

// RequireAdmin passes only for identities with administrator capability.
func RequireAdmin(id Identity) error {
	if !id.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireTenantMatch passes only if the resource belongs to the identity's
// tenant. Apply it on every point lookup of a tenant-owned resource; callers
// surface a failure as not-found, never as forbidden.
func RequireTenantMatch(id Identity, resourceTenantID uuid.UUID) error {
	if id.TenantID != resourceTenantID {
		return ErrTenantMismatch
	}
	return nil
}

// WithContext returns a context carrying the identity.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity from a context, if present.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// FromGin returns the identity set by the auth middleware.
func FromGin(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(GinKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
