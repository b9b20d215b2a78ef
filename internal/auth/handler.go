package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/response"
	"github.com/pulse-reports/backend/pkg/utils"
)

// UserStore is the user persistence the handler needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	Create(ctx context.Context, tenantID uuid.UUID, email, passwordHash, name string, role models.Role) (*models.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.UserPublic, error)
}

// TenantStore is the tenant persistence the handler needs.
type TenantStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	CreateWithAdmin(ctx context.Context, name, slug, email, passwordHash, userName string) (*models.Tenant, *models.User, error)
}

// RegisterRequest is the body for POST /auth/register (company registration).
type RegisterRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Slug        string `json:"slug"` // optional, derived from company name
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Name        string `json:"name" binding:"required"`
}

// SignupRequest is the body for POST /auth/signup (join an existing tenant).
type SignupRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token  string            `json:"token"`
	User   models.UserPublic `json:"user"`
	Tenant *models.Tenant    `json:"tenant,omitempty"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo    UserStore
	tenants TenantStore
	tokens  *TokenService
	revoked *RevocationStore
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo UserStore, tenantRepo TenantStore, tokens *TokenService, revoked *RevocationStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tenants: tenantRepo, tokens: tokens, revoked: revoked, logger: logger}
}

// Register handles POST /auth/register: creates a tenant and its first admin.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.CompanyName)
	}
	if slug == "" {
		response.BadRequest(c, "invalid slug")
		return
	}
	if _, err := h.tenants.GetBySlug(c.Request.Context(), slug); err == nil {
		response.Conflict(c, "slug already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	tenant, user, err := h.tenants.CreateWithAdmin(c.Request.Context(), req.CompanyName, slug, req.Email, hash, req.Name)
	if err != nil {
		h.logger.Error("company registration failed", zap.String("slug", slug), zap.Error(err))
		response.Internal(c, "failed to register company")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, TokenResponse{Token: token, User: user.ToPublic(), Tenant: tenant})
}

// Signup handles POST /auth/signup: joins an existing tenant as a member.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tenant, err := h.tenants.GetBySlug(c.Request.Context(), req.TenantSlug)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, "tenant not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load tenant")
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), tenant.ID, req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	user, err := h.repo.Create(c.Request.Context(), tenant.ID, req.Email, hash, req.Name, models.RoleMember)
	if err != nil {
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, TokenResponse{Token: token, User: user.ToPublic(), Tenant: tenant})
}

// Login handles POST /auth/login. The error message is uniform for unknown
// tenant, unknown email, wrong password and inactive account.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tenant, err := h.tenants.GetBySlug(c.Request.Context(), req.TenantSlug)
	if err != nil {
		loginRejected(c)
		return
	}
	user, err := h.repo.GetByEmail(c.Request.Context(), tenant.ID, req.Email)
	if err != nil {
		loginRejected(c)
		return
	}
	if !user.Active || !utils.CheckPassword(req.Password, user.Password) {
		loginRejected(c)
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic(), Tenant: tenant})
}

// Logout handles POST /auth/logout: revokes the presented token until its
// natural expiry. Requires the JWT middleware.
func (h *Handler) Logout(c *gin.Context) {
	v, ok := c.Get(identity.ClaimsKey)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	claims, ok := v.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		response.Unauthorized(c, response.CodeMalformed, "invalid or expired token")
		return
	}
	if err := h.revoked.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Error("token revocation failed", zap.Error(err))
		response.Internal(c, "failed to log out")
		return
	}
	response.NoContent(c)
}

// Me handles GET /me: returns the requester's profile fresh from the store,
// so role and active status reflect changes made after the token was issued.
func (h *Handler) Me(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), id.UserID)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user.TenantID != id.TenantID {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// ListUsers handles GET /users (admin only). Returns only the requester's
// tenant's users; the tenant id comes from the identity, never the query.
func (h *Handler) ListUsers(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	list, err := h.repo.ListByTenant(c.Request.Context(), id.TenantID)
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

func loginRejected(c *gin.Context) {
	response.Unauthorized(c, response.CodeMissingCredential, "invalid email or password")
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = slugStrip.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
