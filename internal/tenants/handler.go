package tenants

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/response"
)

// Handler handles tenant HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a tenants handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetCurrent handles GET /tenant. The tenant id comes from the verified
// identity, never from the request.
func (h *Handler) GetCurrent(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	tenant, err := h.repo.GetByID(c.Request.Context(), id.TenantID)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, "tenant not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load tenant")
		return
	}
	response.OK(c, tenant)
}
