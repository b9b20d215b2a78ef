package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a tenant-owned document. Every read or write on behalf of a
// request must carry a tenant id equal to the requester's tenant id.
type Report struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	UserID     uuid.UUID `json:"user_id"`
	ReportDate time.Time `json:"report_date"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
