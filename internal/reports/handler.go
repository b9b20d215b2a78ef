package reports

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/response"
)

// Store is the report persistence the handler depends on.
type Store interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Create(ctx context.Context, tenantID, userID uuid.UUID, reportDate time.Time, title, content string) (*models.Report, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, reportDate time.Time, title, content string) (*models.Report, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// dateLayout is the wire format for report dates.
const dateLayout = "2006-01-02"

// CreateReportRequest is the body for POST /reports.
type CreateReportRequest struct {
	ReportDate string `json:"report_date" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// Handler handles report HTTP endpoints. All scoping uses the identity's
// tenant id; a client-supplied report id is looked up and then tenant-checked,
// with a mismatch reported exactly like a miss.
type Handler struct {
	store Store
}

// NewHandler creates a reports handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List handles GET /reports: all reports of the requester's tenant.
func (h *Handler) List(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	list, err := h.store.ListByTenant(c.Request.Context(), id.TenantID)
	if err != nil {
		response.Internal(c, "failed to list reports")
		return
	}
	response.OK(c, list)
}

// Create handles POST /reports. Owner and tenant come from the identity.
func (h *Handler) Create(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.ReportDate)
	if err != nil {
		response.BadRequest(c, "report_date must be YYYY-MM-DD")
		return
	}
	rep, err := h.store.Create(c.Request.Context(), id.TenantID, id.UserID, date, req.Title, req.Content)
	if err != nil {
		response.Internal(c, "failed to create report")
		return
	}
	response.Created(c, rep)
}

// GetByID handles GET /reports/:id.
func (h *Handler) GetByID(c *gin.Context) {
	rep, ok := h.fetchOwned(c)
	if !ok {
		return
	}
	response.OK(c, rep)
}

// Update handles PATCH /reports/:id.
func (h *Handler) Update(c *gin.Context) {
	rep, ok := h.fetchOwned(c)
	if !ok {
		return
	}
	id, _ := identity.FromGin(c)

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.ReportDate)
	if err != nil {
		response.BadRequest(c, "report_date must be YYYY-MM-DD")
		return
	}
	updated, err := h.store.Update(c.Request.Context(), id.TenantID, rep.ID, date, req.Title, req.Content)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, "report not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to update report")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /reports/:id.
func (h *Handler) Delete(c *gin.Context) {
	rep, ok := h.fetchOwned(c)
	if !ok {
		return
	}
	id, _ := identity.FromGin(c)
	err := h.store.Delete(c.Request.Context(), id.TenantID, rep.ID)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, "report not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to delete report")
		return
	}
	response.NoContent(c)
}

// fetchOwned loads the report named by :id and verifies it belongs to the
// requester's tenant. A cross-tenant report is reported with the same 404 as
// a nonexistent one, so ids cannot be probed across tenants. On failure the
// response has been written and ok is false.
func (h *Handler) fetchOwned(c *gin.Context) (*models.Report, bool) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return nil, false
	}
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid report id")
		return nil, false
	}
	rep, err := h.store.GetByID(c.Request.Context(), reportID)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, "report not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "failed to load report")
		return nil, false
	}
	if err := identity.RequireTenantMatch(id, rep.TenantID); err != nil {
		response.NotFound(c, "report not found")
		return nil, false
	}
	return rep, true
}
