package exports

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulse-reports/backend/internal/identity"
	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/queue"
	"github.com/pulse-reports/backend/pkg/response"
)

// Store is the export persistence the handler depends on.
type Store interface {
	Create(ctx context.Context, tenantID, requestedBy uuid.UUID) (*models.ReportExport, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReportExport, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.ReportExport, error)
}

// Enqueuer submits export jobs to the worker queue.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, payload queue.ExportPayload) error
}

// Presigner produces download URLs for export objects.
type Presigner interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Handler handles report export HTTP endpoints.
type Handler struct {
	store  Store
	jobs   Enqueuer
	signer Presigner
	logger *zap.Logger
}

// NewHandler creates an exports handler.
func NewHandler(store Store, jobs Enqueuer, signer Presigner, logger *zap.Logger) *Handler {
	return &Handler{store: store, jobs: jobs, signer: signer, logger: logger}
}

// Create handles POST /reports/export: records a pending export for the
// requester's tenant and enqueues the job.
func (h *Handler) Create(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	export, err := h.store.Create(c.Request.Context(), id.TenantID, id.UserID)
	if err != nil {
		response.Internal(c, "failed to create export")
		return
	}
	payload := queue.ExportPayload{ExportID: export.ID, TenantID: id.TenantID}
	if err := h.jobs.EnqueueExport(c.Request.Context(), payload); err != nil {
		h.logger.Error("export enqueue failed", zap.String("export_id", export.ID.String()), zap.Error(err))
		response.Internal(c, "failed to enqueue export")
		return
	}
	response.Created(c, export)
}

// List handles GET /exports for the requester's tenant.
func (h *Handler) List(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	list, err := h.store.ListByTenant(c.Request.Context(), id.TenantID)
	if err != nil {
		response.Internal(c, "failed to list exports")
		return
	}
	response.OK(c, list)
}

// DownloadURL handles GET /exports/:id/download-url. A cross-tenant export id
// is answered with the same 404 as an unknown one.
func (h *Handler) DownloadURL(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		response.Unauthorized(c, response.CodeMissingCredential, "missing user context")
		return
	}
	exportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	export, err := h.store.GetByID(c.Request.Context(), exportID)
	if errors.Is(err, models.ErrNotFound) {
		response.NotFound(c, "export not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load export")
		return
	}
	if err := identity.RequireTenantMatch(id, export.TenantID); err != nil {
		response.NotFound(c, "export not found")
		return
	}
	if export.Status != models.ExportReady {
		response.Conflict(c, "export not ready")
		return
	}
	url, err := h.signer.PresignDownload(c.Request.Context(), export.ObjectKey)
	if err != nil {
		response.Internal(c, "failed to sign download url")
		return
	}
	response.OK(c, gin.H{"url": url})
}
