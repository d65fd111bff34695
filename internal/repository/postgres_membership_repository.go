package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// PostgresMembershipRepository implements MembershipRepository using PostgreSQL
type PostgresMembershipRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMembershipRepository creates a new PostgresMembershipRepository
func NewPostgresMembershipRepository(pool *pgxpool.Pool) *PostgresMembershipRepository {
	return &PostgresMembershipRepository{pool: pool}
}

// Create creates a membership linking a user to a tenant with a role
func (r *PostgresMembershipRepository) Create(ctx context.Context, m *domain.SiteMembership) error {
	query := `
		INSERT INTO site_memberships (tenant_id, user_id, role_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, m.TenantID, m.UserID, m.RoleID, m.CreatedAt)
	return translateUniqueViolation(err, "user is already a member of this site")
}

// Get retrieves the membership for a user on a tenant
func (r *PostgresMembershipRepository) Get(ctx context.Context, tenantID, userID string) (*domain.SiteMembership, error) {
	query := `
		SELECT tenant_id, user_id, role_id, created_at
		FROM site_memberships
		WHERE tenant_id = $1 AND user_id = $2
	`
	m := &domain.SiteMembership{}
	err := r.pool.QueryRow(ctx, query, tenantID, userID).Scan(
		&m.TenantID,
		&m.UserID,
		&m.RoleID,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListByUser retrieves all memberships of a user
func (r *PostgresMembershipRepository) ListByUser(ctx context.Context, userID string) ([]*domain.SiteMembership, error) {
	query := `
		SELECT tenant_id, user_id, role_id, created_at
		FROM site_memberships
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, userID)
}

// ListByTenant retrieves all memberships on a tenant
func (r *PostgresMembershipRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.SiteMembership, error) {
	query := `
		SELECT tenant_id, user_id, role_id, created_at
		FROM site_memberships
		WHERE tenant_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, tenantID)
}

func (r *PostgresMembershipRepository) list(ctx context.Context, query string, arg any) ([]*domain.SiteMembership, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]*domain.SiteMembership, 0)
	for rows.Next() {
		m := &domain.SiteMembership{}
		if err := rows.Scan(&m.TenantID, &m.UserID, &m.RoleID, &m.CreatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}

// UpdateRole changes the role of an existing membership
func (r *PostgresMembershipRepository) UpdateRole(ctx context.Context, tenantID, userID, roleID string) error {
	query := `
		UPDATE site_memberships
		SET role_id = $3
		WHERE tenant_id = $1 AND user_id = $2
	`
	result, err := r.pool.Exec(ctx, query, tenantID, userID, roleID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("membership", tenantID+"/"+userID)
	}
	return nil
}

// Delete removes a membership
func (r *PostgresMembershipRepository) Delete(ctx context.Context, tenantID, userID string) error {
	query := `DELETE FROM site_memberships WHERE tenant_id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, tenantID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("membership", tenantID+"/"+userID)
	}
	return nil
}

// CountByUser returns the number of memberships a user holds
func (r *PostgresMembershipRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM site_memberships WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
