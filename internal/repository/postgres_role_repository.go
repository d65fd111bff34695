package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// PostgresRoleRepository implements RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRoleRepository creates a new PostgresRoleRepository
func NewPostgresRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

// Create creates a new role
func (r *PostgresRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (id, name, display_name, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		role.ID,
		role.Name,
		role.DisplayName,
		role.Permissions,
		role.CreatedAt,
		role.UpdatedAt,
	)
	return translateUniqueViolation(err, "a role with the same name already exists")
}

// GetByID retrieves a role by ID
func (r *PostgresRoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	if !wellFormedID(id) {
		return nil, nil
	}
	query := `
		SELECT id, name, display_name, permissions, created_at, updated_at
		FROM roles
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByName retrieves a role by name
func (r *PostgresRoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	query := `
		SELECT id, name, display_name, permissions, created_at, updated_at
		FROM roles
		WHERE name = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

func (r *PostgresRoleRepository) scanOne(row pgx.Row) (*domain.Role, error) {
	role := &domain.Role{}
	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.DisplayName,
		&role.Permissions,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// List retrieves all roles
func (r *PostgresRoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	query := `
		SELECT id, name, display_name, permissions, created_at, updated_at
		FROM roles
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]*domain.Role, 0)
	for rows.Next() {
		role := &domain.Role{}
		err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.DisplayName,
			&role.Permissions,
			&role.CreatedAt,
			&role.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// Update updates a role
func (r *PostgresRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `
		UPDATE roles
		SET display_name = $2, permissions = $3, updated_at = $4
		WHERE id = $1
	`
	role.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		role.ID,
		role.DisplayName,
		role.Permissions,
		role.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("role", role.ID)
	}
	return nil
}

// Delete removes a role unless memberships or users still reference it. The
// reference count runs inside the deleting transaction so it cannot go
// stale.
func (r *PostgresRoleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var count int64
	countQuery := `
		SELECT (SELECT COUNT(*) FROM site_memberships WHERE role_id = $1)
		     + (SELECT COUNT(*) FROM users WHERE role_id = $1)
	`
	if err := tx.QueryRow(ctx, countQuery, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return apperr.InUse("role", count)
	}

	result, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("role", id)
	}
	return tx.Commit(ctx)
}
