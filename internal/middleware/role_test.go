package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulse-reports/backend/internal/auth"
	"github.com/pulse-reports/backend/internal/middleware"
	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/response"
)

func adminRouter(tokens *auth.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin",
		middleware.JWT(tokens, &fakeRevocations{}, zap.NewNop()),
		middleware.RequireAdmin(),
		func(c *gin.Context) { response.OK(c, gin.H{"ok": true}) },
	)
	return r
}

func roleToken(t *testing.T, tokens *auth.TokenService, role models.Role) string {
	t.Helper()
	token, err := tokens.Generate(&models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "dev@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func TestRequireAdminAllowsAdminRoles(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	r := adminRouter(tokens)

	for _, role := range []models.Role{models.RoleAdmin, models.RoleSuperadmin} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+roleToken(t, tokens, role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}

func TestRequireAdminRejectsMember(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	r := adminRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+roleToken(t, tokens, models.RoleMember))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, response.CodeForbidden, decodeBody(t, w).Code)
}

func TestRequireAdminRejectsUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// RequireAdmin wired without JWT: no identity means reject, not pass.
	r.GET("/admin", middleware.RequireAdmin(), func(c *gin.Context) { response.OK(c, nil) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
