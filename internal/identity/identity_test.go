package identity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/internal/models"
)

func TestRequireAdmin(t *testing.T) {
	member := identity.Identity{UserID: uuid.New(), TenantID: uuid.New(), Role: models.RoleMember}
	require.ErrorIs(t, identity.RequireAdmin(member), identity.ErrForbidden)

	admin := member
	admin.IsAdmin = true
	require.NoError(t, identity.RequireAdmin(admin))
}

func TestRequireTenantMatch(t *testing.T) {
	tenantID := uuid.New()
	id := identity.Identity{UserID: uuid.New(), TenantID: tenantID}

	require.NoError(t, identity.RequireTenantMatch(id, tenantID))
	require.ErrorIs(t, identity.RequireTenantMatch(id, uuid.New()), identity.ErrTenantMismatch)
}

func TestContextRoundTrip(t *testing.T) {
	id := identity.Identity{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Email:    "dev@example.com",
		Role:     models.RoleAdmin,
		IsAdmin:  true,
	}

	ctx := identity.WithContext(context.Background(), id)
	got, ok := identity.FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)

	_, ok = identity.FromContext(context.Background())
	require.False(t, ok)
}
