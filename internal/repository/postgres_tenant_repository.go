package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

const pgUniqueViolation = "23505"

// PostgresTenantRepository implements TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTenantRepository creates a new PostgresTenantRepository
func NewPostgresTenantRepository(pool *pgxpool.Pool) *PostgresTenantRepository {
	return &PostgresTenantRepository{pool: pool}
}

// Create creates a new tenant
func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, display_name, domain, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.DisplayName,
		nullStringOrValue(tenant.Domain),
		tenant.IsActive,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	return translateUniqueViolation(err, "a tenant with the same name or domain already exists")
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if !wellFormedID(id) {
		return nil, nil
	}
	query := `
		SELECT id, name, display_name, COALESCE(domain, '') as domain, is_active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByName retrieves a tenant by its url-safe name
func (r *PostgresTenantRepository) GetByName(ctx context.Context, name string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, display_name, COALESCE(domain, '') as domain, is_active, created_at, updated_at
		FROM tenants
		WHERE name = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

// GetByDomain retrieves a tenant by its mapped domain
func (r *PostgresTenantRepository) GetByDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, display_name, COALESCE(domain, '') as domain, is_active, created_at, updated_at
		FROM tenants
		WHERE domain = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, domainName))
}

func (r *PostgresTenantRepository) scanOne(row pgx.Row) (*domain.Tenant, error) {
	tenant := &domain.Tenant{}
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.DisplayName,
		&tenant.Domain,
		&tenant.IsActive,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tenant, nil
}

// List retrieves tenants with pagination and filters
func (r *PostgresTenantRepository) List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.Tenant, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if isActive != nil {
		whereClause += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, *isActive)
		argIndex++
	}

	if search != "" {
		whereClause += fmt.Sprintf(" AND (name ILIKE $%d OR display_name ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tenants %s", whereClause)
	var totalCount int
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT id, name, display_name, COALESCE(domain, '') as domain, is_active, created_at, updated_at
		FROM tenants
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tenants := make([]*domain.Tenant, 0)
	for rows.Next() {
		tenant := &domain.Tenant{}
		err := rows.Scan(
			&tenant.ID,
			&tenant.Name,
			&tenant.DisplayName,
			&tenant.Domain,
			&tenant.IsActive,
			&tenant.CreatedAt,
			&tenant.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, tenant)
	}

	return tenants, totalCount, nil
}

// Update updates a tenant
func (r *PostgresTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		UPDATE tenants
		SET display_name = $2, domain = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`
	tenant.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.DisplayName,
		nullStringOrValue(tenant.Domain),
		tenant.IsActive,
		tenant.UpdatedAt,
	)
	if err != nil {
		return translateUniqueViolation(err, "a tenant with the same domain already exists")
	}
	if result.RowsAffected() == 0 {
		return apperr.TenantNotFound(tenant.ID)
	}
	return nil
}

// Delete removes a tenant row
func (r *PostgresTenantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.TenantNotFound(id)
	}
	return nil
}

// ExistsByName checks if a tenant exists with the given name
func (r *PostgresTenantRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tenants WHERE name = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

// nullStringOrValue returns nil for empty strings, otherwise returns the value
func nullStringOrValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// translateUniqueViolation maps a unique constraint violation to a Conflict
// error; the constraint is the correctness mechanism for concurrent writes.
func translateUniqueViolation(err error, reason string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Conflict(reason).WithCause(err)
	}
	return err
}
