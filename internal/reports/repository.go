package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-reports/backend/internal/models"
)

// Repository handles report persistence. Listing queries filter by tenant id
// server-side; writes include the tenant id in the WHERE clause so a row can
// never be touched across tenants even if a handler check were bypassed.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reportColumns = `id, tenant_id, user_id, report_date, title, content, created_at, updated_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	var rep models.Report
	err := row.Scan(&rep.ID, &rep.TenantID, &rep.UserID, &rep.ReportDate, &rep.Title, &rep.Content, &rep.CreatedAt, &rep.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListByTenant returns all reports of one tenant, newest first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM reports WHERE tenant_id = $1 ORDER BY report_date DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.TenantID, &rep.UserID, &rep.ReportDate, &rep.Title, &rep.Content, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}

// GetByID returns a report by id regardless of tenant. Callers must verify
// the tenant match before returning or mutating the result.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	return scanReport(r.pool.QueryRow(ctx, q, id))
}

// Create inserts a report owned by the given user and tenant.
func (r *Repository) Create(ctx context.Context, tenantID, userID uuid.UUID, reportDate time.Time, title, content string) (*models.Report, error) {
	const q = `INSERT INTO reports (id, tenant_id, user_id, report_date, title, content)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING ` + reportColumns
	return scanReport(r.pool.QueryRow(ctx, q, tenantID, userID, reportDate, title, content))
}

// Update changes title/content/date of a report within the tenant.
func (r *Repository) Update(ctx context.Context, tenantID, id uuid.UUID, reportDate time.Time, title, content string) (*models.Report, error) {
	const q = `UPDATE reports SET report_date = $3, title = $4, content = $5, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + reportColumns
	return scanReport(r.pool.QueryRow(ctx, q, id, tenantID, reportDate, title, content))
}

// Delete removes a report within the tenant.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
