package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when a row does not exist.
// Handlers use it to distinguish a miss from a store failure.
var ErrNotFound = errors.New("not found")

// Tenant represents one isolated customer organization. The tenant id is
// immutable once created; the slug is unique across all tenants.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
