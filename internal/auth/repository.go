package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-reports/backend/internal/models"
)

// Repository handles user persistence. Every lookup against users is scoped by
// tenant id except GetByID, whose result must be tenant-checked by the caller.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, tenant_id, email, password_hash, name, role, active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID, regardless of tenant.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns a user by email within a tenant. Email is only unique
// per tenant, so a tenant id is mandatory.
func (r *Repository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND email = $2`
	return scanUser(r.pool.QueryRow(ctx, q, tenantID, email))
}

// Create inserts a new user into the given tenant.
func (r *Repository) Create(ctx context.Context, tenantID uuid.UUID, email, passwordHash, name string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO users (id, tenant_id, email, password_hash, name, role, active)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, TRUE)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, tenantID, email, passwordHash, name, string(role)))
}

// ListByTenant returns the users of one tenant only.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT id, tenant_id, email, name, role, active, created_at
		FROM users WHERE tenant_id = $1 ORDER BY name, email`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
