package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pulse-reports/backend/internal/auth"
	"github.com/pulse-reports/backend/internal/models"
)

const testSecret = "test-secret"

func testUser(role models.Role) *models.User {
	return &models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "dev@example.com",
		Name:     "Dev",
		Role:     role,
		Active:   true,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := auth.NewTokenService(testSecret, time.Hour)
	user := testUser(models.RoleMember)

	token, err := svc.Generate(user)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), claims.Subject)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, user.TenantID, claims.TenantID.ID)
	require.Equal(t, models.RoleMember, claims.Role)
	require.False(t, claims.IsAdmin)
	require.NotEmpty(t, claims.ID)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewTokenService("other-secret", time.Hour).Generate(testUser(models.RoleMember))
	require.NoError(t, err)

	_, err = auth.NewTokenService(testSecret, time.Hour).Verify(token)
	require.ErrorIs(t, err, auth.ErrBadSignature)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := auth.NewTokenService(testSecret, -time.Minute)
	token, err := svc.Generate(testUser(models.RoleAdmin))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, auth.ErrExpired)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	svc := auth.NewTokenService(testSecret, time.Hour)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(token)
		require.ErrorIs(t, err, auth.ErrMalformed, "token %q", token)
	}
}

func TestVerifyRejectsMissingTenant(t *testing.T) {
	svc := auth.NewTokenService(testSecret, time.Hour)
	user := testUser(models.RoleMember)
	user.TenantID = uuid.Nil

	token, err := svc.Generate(user)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, auth.ErrTenantMissing)
}

// Older issuers put the tenant id in the token as an object instead of a bare
// string; both forms must resolve to the same tenant.
func TestVerifyAcceptsTenantObjectForm(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	now := time.Now()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"email": "dev@example.com",
		"tid":   map[string]string{"id": tenantID.String()},
		"role":  "member",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"jti":   uuid.New().String(),
	})
	token, err := raw.SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := auth.NewTokenService(testSecret, time.Hour).Verify(token)
	require.NoError(t, err)
	require.Equal(t, tenantID, claims.TenantID.ID)
}

// A correctly signed token that omits exp would otherwise never expire;
// verification must reject it outright.
func TestVerifyRejectsTokenWithoutExpiry(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   uuid.New().String(),
		"email": "dev@example.com",
		"tid":   uuid.New().String(),
		"role":  "member",
		"iat":   time.Now().Unix(),
		"jti":   uuid.New().String(),
	})
	token, err := raw.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.NewTokenService(testSecret, time.Hour).Verify(token)
	require.ErrorIs(t, err, auth.ErrMalformed)
}

func TestClaimsAdminIsOrOfRoleAndFlag(t *testing.T) {
	cases := []struct {
		name    string
		role    models.Role
		isAdmin bool
		want    bool
	}{
		{"member without flag", models.RoleMember, false, false},
		{"member with flag", models.RoleMember, true, true},
		{"admin without flag", models.RoleAdmin, false, true},
		{"superadmin without flag", models.RoleSuperadmin, false, true},
		{"unknown role with flag", models.Role("viewer"), true, true},
		{"unknown role without flag", models.Role("viewer"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := &auth.Claims{Role: tc.role, IsAdmin: tc.isAdmin}
			require.Equal(t, tc.want, claims.Admin())
		})
	}
}
