package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-reports/backend/internal/models"
)

// Repository handles tenant persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tenants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a tenant by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	const q = `SELECT id, name, slug, created_at, updated_at FROM tenants WHERE id = $1`
	return scanTenant(r.pool.QueryRow(ctx, q, id))
}

// GetBySlug returns a tenant by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	const q = `SELECT id, name, slug, created_at, updated_at FROM tenants WHERE slug = $1`
	return scanTenant(r.pool.QueryRow(ctx, q, slug))
}

// CreateWithAdmin creates a tenant and its first admin user in one
// transaction, so a company registration can never leave a tenant without an
// administrator.
func (r *Repository) CreateWithAdmin(ctx context.Context, name, slug, email, passwordHash, userName string) (*models.Tenant, *models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const tq = `INSERT INTO tenants (id, name, slug) VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, name, slug, created_at, updated_at`
	tenant, err := scanTenant(tx.QueryRow(ctx, tq, name, slug))
	if err != nil {
		return nil, nil, fmt.Errorf("create tenant: %w", err)
	}

	const uq = `INSERT INTO users (id, tenant_id, email, password_hash, name, role, active)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, TRUE)
		RETURNING id, tenant_id, email, password_hash, name, role, active, created_at, updated_at`
	var u models.User
	err = tx.QueryRow(ctx, uq, tenant.ID, email, passwordHash, userName, string(models.RoleAdmin)).
		Scan(&u.ID, &u.TenantID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("create admin user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return tenant, &u, nil
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
