package exports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-reports/backend/internal/models"
)

// Repository handles report export persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an exports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const exportColumns = `id, tenant_id, requested_by, status, COALESCE(object_key,''), row_count, created_at, updated_at`

func scanExport(row pgx.Row) (*models.ReportExport, error) {
	var e models.ReportExport
	err := row.Scan(&e.ID, &e.TenantID, &e.RequestedBy, &e.Status, &e.ObjectKey, &e.RowCount, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a pending export for the tenant.
func (r *Repository) Create(ctx context.Context, tenantID, requestedBy uuid.UUID) (*models.ReportExport, error) {
	const q = `INSERT INTO report_exports (id, tenant_id, requested_by, status)
		VALUES (gen_random_uuid(), $1, $2, 'pending')
		RETURNING ` + exportColumns
	return scanExport(r.pool.QueryRow(ctx, q, tenantID, requestedBy))
}

// GetByID returns an export by id regardless of tenant. Callers must verify
// the tenant match before returning the result.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReportExport, error) {
	const q = `SELECT ` + exportColumns + ` FROM report_exports WHERE id = $1`
	return scanExport(r.pool.QueryRow(ctx, q, id))
}

// ListByTenant returns the exports of one tenant, newest first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.ReportExport, error) {
	const q = `SELECT ` + exportColumns + ` FROM report_exports WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ReportExport
	for rows.Next() {
		var e models.ReportExport
		if err := rows.Scan(&e.ID, &e.TenantID, &e.RequestedBy, &e.Status, &e.ObjectKey, &e.RowCount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkProcessing flips a pending export to processing.
func (r *Repository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE report_exports SET status = 'processing', updated_at = NOW() WHERE id = $1`, id)
	return err
}

// MarkReady records the uploaded object and row count.
func (r *Repository) MarkReady(ctx context.Context, id uuid.UUID, objectKey string, rowCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE report_exports SET status = 'ready', object_key = $2, row_count = $3, updated_at = NOW() WHERE id = $1`,
		id, objectKey, rowCount)
	return err
}

// MarkFailed flags an export whose job exhausted its retries.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE report_exports SET status = 'failed', updated_at = NOW() WHERE id = $1`, id)
	return err
}
