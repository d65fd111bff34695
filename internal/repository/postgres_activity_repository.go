package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// PostgresActivityRepository implements ActivityRepository using PostgreSQL.
// The table is append-only; no update or delete statements exist here.
type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresActivityRepository creates a new PostgresActivityRepository
func NewPostgresActivityRepository(pool *pgxpool.Pool) *PostgresActivityRepository {
	return &PostgresActivityRepository{pool: pool}
}

const activityColumns = `id, tenant_id, actor_id, COALESCE(impersonator_id, '') as impersonator_id, action, object_type,
	COALESCE(object_id, '') as object_id, COALESCE(object_label, '') as object_label,
	changes_before, changes_after, COALESCE(ip_address, '') as ip_address, COALESCE(user_agent, '') as user_agent, created_at`

// Insert appends one entry
func (r *PostgresActivityRepository) Insert(ctx context.Context, entry *domain.ActivityLogEntry) error {
	query := `
		INSERT INTO activity_log (id, tenant_id, actor_id, impersonator_id, action, object_type, object_id, object_label, changes_before, changes_after, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.ActorID,
		nullStringOrValue(entry.ImpersonatorID),
		entry.Action,
		entry.ObjectType,
		nullStringOrValue(entry.ObjectID),
		nullStringOrValue(entry.ObjectLabel),
		entry.ChangesBefore,
		entry.ChangesAfter,
		nullStringOrValue(entry.IPAddress),
		nullStringOrValue(entry.UserAgent),
		entry.CreatedAt,
	)
	return err
}

// List retrieves entries newest-first with pagination and filters
func (r *PostgresActivityRepository) List(ctx context.Context, page, limit int, filter ActivityFilter) ([]*domain.ActivityLogEntry, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.TenantID != nil {
		if !wellFormedID(*filter.TenantID) {
			return []*domain.ActivityLogEntry{}, 0, nil
		}
		whereClause += fmt.Sprintf(" AND tenant_id = $%d", argIndex)
		args = append(args, *filter.TenantID)
		argIndex++
	}
	if filter.ActorID != "" {
		if !wellFormedID(filter.ActorID) {
			return []*domain.ActivityLogEntry{}, 0, nil
		}
		whereClause += fmt.Sprintf(" AND actor_id = $%d", argIndex)
		args = append(args, filter.ActorID)
		argIndex++
	}
	if filter.Action != "" {
		whereClause += fmt.Sprintf(" AND action = $%d", argIndex)
		args = append(args, filter.Action)
		argIndex++
	}
	if filter.ObjectType != "" {
		whereClause += fmt.Sprintf(" AND object_type = $%d", argIndex)
		args = append(args, filter.ObjectType)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activity_log %s", whereClause)
	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM activity_log
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, activityColumns, whereClause, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]*domain.ActivityLogEntry, 0)
	for rows.Next() {
		entry := &domain.ActivityLogEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.ActorID,
			&entry.ImpersonatorID,
			&entry.Action,
			&entry.ObjectType,
			&entry.ObjectID,
			&entry.ObjectLabel,
			&entry.ChangesBefore,
			&entry.ChangesAfter,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, totalCount, nil
}

// GetByID retrieves one entry
func (r *PostgresActivityRepository) GetByID(ctx context.Context, id string) (*domain.ActivityLogEntry, error) {
	if !wellFormedID(id) {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM activity_log WHERE id = $1`, activityColumns)
	entry := &domain.ActivityLogEntry{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.ActorID,
		&entry.ImpersonatorID,
		&entry.Action,
		&entry.ObjectType,
		&entry.ObjectID,
		&entry.ObjectLabel,
		&entry.ChangesBefore,
		&entry.ChangesAfter,
		&entry.IPAddress,
		&entry.UserAgent,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}
