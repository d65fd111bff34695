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

// PostgresAPIKeyRepository implements APIKeyRepository using PostgreSQL
type PostgresAPIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAPIKeyRepository creates a new PostgresAPIKeyRepository
func NewPostgresAPIKeyRepository(pool *pgxpool.Pool) *PostgresAPIKeyRepository {
	return &PostgresAPIKeyRepository{pool: pool}
}

const apiKeyColumns = `id, user_id, name, permissions, tenant_id, key_hash, prefix, last_used_at, expires_at, is_active, created_at, updated_at`

// Create creates a new API key record
func (r *PostgresAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, name, permissions, tenant_id, key_hash, prefix, last_used_at, expires_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		key.ID,
		key.UserID,
		key.Name,
		key.Permissions,
		key.TenantID,
		key.KeyHash,
		key.Prefix,
		key.LastUsedAt,
		key.ExpiresAt,
		key.IsActive,
		key.CreatedAt,
		key.UpdatedAt,
	)
	return translateUniqueViolation(err, "an API key with the same hash already exists")
}

// GetByID retrieves a key by ID
func (r *PostgresAPIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByHash retrieves an active key by its secret hash
func (r *PostgresAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1 AND is_active = true`
	return r.scanOne(r.pool.QueryRow(ctx, query, keyHash))
}

func (r *PostgresAPIKeyRepository) scanOne(row pgx.Row) (*domain.APIKey, error) {
	key := &domain.APIKey{}
	err := row.Scan(
		&key.ID,
		&key.UserID,
		&key.Name,
		&key.Permissions,
		&key.TenantID,
		&key.KeyHash,
		&key.Prefix,
		&key.LastUsedAt,
		&key.ExpiresAt,
		&key.IsActive,
		&key.CreatedAt,
		&key.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return key, nil
}

// ListByUser retrieves all keys of a user
func (r *PostgresAPIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]*domain.APIKey, 0)
	for rows.Next() {
		key := &domain.APIKey{}
		err := rows.Scan(
			&key.ID,
			&key.UserID,
			&key.Name,
			&key.Permissions,
			&key.TenantID,
			&key.KeyHash,
			&key.Prefix,
			&key.LastUsedAt,
			&key.ExpiresAt,
			&key.IsActive,
			&key.CreatedAt,
			&key.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// TouchLastUsed records the time a key was last used
func (r *PostgresAPIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

// Revoke deactivates a key
func (r *PostgresAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE api_keys SET is_active = false, updated_at = $2 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("api_key", id)
	}
	return nil
}

// Delete removes a key row
func (r *PostgresAPIKeyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("api_key", id)
	}
	return nil
}
