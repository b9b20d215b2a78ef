package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportStatus tracks a report export job through its lifecycle.
type ExportStatus string

const (
	ExportPending    ExportStatus = "pending"
	ExportProcessing ExportStatus = "processing"
	ExportReady      ExportStatus = "ready"
	ExportFailed     ExportStatus = "failed"
)

// ReportExport is a CSV snapshot of one tenant's reports, built by the worker
// and stored in S3 under ObjectKey once Status is ready.
type ReportExport struct {
	ID          uuid.UUID    `json:"id"`
	TenantID    uuid.UUID    `json:"tenant_id"`
	RequestedBy uuid.UUID    `json:"requested_by"`
	Status      ExportStatus `json:"status"`
	ObjectKey   string       `json:"object_key,omitempty"`
	RowCount    int          `json:"row_count"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
