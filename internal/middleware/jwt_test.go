package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulse-reports/backend/internal/auth"
	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/internal/middleware"
	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/response"
)

const testSecret = "test-secret"

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

func newRouter(tokens *auth.TokenService, revoked middleware.RevocationChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", middleware.JWT(tokens, revoked, zap.NewNop()), func(c *gin.Context) {
		// the identity must be readable from the plain request context too
		id, ok := identity.FromContext(c.Request.Context())
		if !ok {
			response.Internal(c, "identity missing from request context")
			return
		}
		response.OK(c, gin.H{"user_id": id.UserID, "tenant_id": id.TenantID, "is_admin": id.IsAdmin})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Body {
	t.Helper()
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func memberToken(t *testing.T, tokens *auth.TokenService) string {
	t.Helper()
	token, err := tokens.Generate(&models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "dev@example.com",
		Role:     models.RoleMember,
	})
	require.NoError(t, err)
	return token
}

func TestJWTAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	r := newRouter(tokens, &fakeRevocations{})

	w := doRequest(r, "Bearer "+memberToken(t, tokens))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decodeBody(t, w).Success)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	r := newRouter(tokens, &fakeRevocations{})

	w := doRequest(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.CodeMissingCredential, decodeBody(t, w).Code)
}

func TestJWTRejectsWrongScheme(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	r := newRouter(tokens, &fakeRevocations{})

	w := doRequest(r, "Token abc")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.CodeMissingCredential, decodeBody(t, w).Code)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	expired := auth.NewTokenService(testSecret, -time.Minute)
	r := newRouter(auth.NewTokenService(testSecret, time.Hour), &fakeRevocations{})

	w := doRequest(r, "Bearer "+memberToken(t, expired))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.CodeExpired, decodeBody(t, w).Code)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	foreign := auth.NewTokenService("other-secret", time.Hour)
	r := newRouter(auth.NewTokenService(testSecret, time.Hour), &fakeRevocations{})

	w := doRequest(r, "Bearer "+memberToken(t, foreign))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.CodeBadSignature, decodeBody(t, w).Code)
}

func TestJWTRejectsMalformedToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	r := newRouter(tokens, &fakeRevocations{})

	w := doRequest(r, "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.CodeMalformed, decodeBody(t, w).Code)
}

func TestJWTRejectsRevokedToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	token := memberToken(t, tokens)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)

	r := newRouter(tokens, &fakeRevocations{revoked: map[string]bool{claims.ID: true}})
	w := doRequest(r, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.CodeRevoked, decodeBody(t, w).Code)
}

// A failing revocation store must deny the request, never let it through.
func TestJWTFailsClosedOnRevocationStoreError(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	r := newRouter(tokens, &fakeRevocations{err: errors.New("redis down")})

	w := doRequest(r, "Bearer "+memberToken(t, tokens))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, response.CodeAuthUnavailable, decodeBody(t, w).Code)
}
