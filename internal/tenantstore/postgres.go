package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

const pgUniqueViolation = "23505"

// PostgresStrategy stores every tenant's documents of one kind in a single
// shared table with a tenant_id column. Every query this strategy issues
// injects an equality filter on tenant_id and every write stamps it; this is
// the only code that touches the shared tables.
type PostgresStrategy struct {
	pool *pgxpool.Pool
}

// NewPostgresStrategy creates a PostgresStrategy over the given pool.
func NewPostgresStrategy(pool *pgxpool.Pool) *PostgresStrategy {
	return &PostgresStrategy{pool: pool}
}

// Collection returns the shared-table handle scoped to one tenant.
func (s *PostgresStrategy) Collection(tenantID string, kind Kind) Collection {
	return &pgCollection{pool: s.pool, tenantID: tenantID, kind: kind}
}

// Provision creates the shared tables and their unique indexes. The tables
// are shared across tenants, so provisioning is idempotent and the first
// tenant pays the cost.
func (s *PostgresStrategy) Provision(ctx context.Context, tenantID string) error {
	for _, kind := range AllKinds() {
		table := pgTableName(kind)
		ddl := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				tenant_id UUID NOT NULL,
				doc JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`, table)
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		idx := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS ix_%s_tenant ON %s (tenant_id)",
			table, table)
		if _, err := s.pool.Exec(ctx, idx); err != nil {
			return fmt.Errorf("create tenant index on %s: %w", table, err)
		}
		for _, uc := range Constraints(kind) {
			if _, err := s.pool.Exec(ctx, pgUniqueIndexDDL(table, uc)); err != nil {
				return fmt.Errorf("create unique index %s on %s: %w", uc.Name, table, err)
			}
		}
	}
	return nil
}

// Destroy deletes all of the tenant's rows across every shared table in one
// transaction.
func (s *PostgresStrategy) Destroy(ctx context.Context, tenantID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, kind := range AllKinds() {
		query := fmt.Sprintf("DELETE FROM %s WHERE tenant_id = $1", pgTableName(kind))
		if _, err := tx.Exec(ctx, query, tenantID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func pgTableName(kind Kind) string {
	return "cms_" + string(kind)
}

// pgUniqueIndexDDL builds a per-tenant unique index over JSONB fields.
// Partial constraints only apply to rows where every field is non-empty.
func pgUniqueIndexDDL(table string, uc UniqueConstraint) string {
	cols := make([]string, 0, len(uc.Fields)+1)
	cols = append(cols, "tenant_id")
	conds := make([]string, 0, len(uc.Fields))
	for _, f := range uc.Fields {
		cols = append(cols, fmt.Sprintf("(doc->>'%s')", f))
		conds = append(conds, fmt.Sprintf("COALESCE(doc->>'%s', '') <> ''", f))
	}
	ddl := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS ux_%s_%s ON %s (%s)",
		table, uc.Name, table, strings.Join(cols, ", "))
	if uc.Partial {
		ddl += " WHERE " + strings.Join(conds, " AND ")
	}
	return ddl
}

type pgCollection struct {
	pool     *pgxpool.Pool
	tenantID string
	kind     Kind
}

func (c *pgCollection) table() string { return pgTableName(c.kind) }

// validPgID keeps malformed ids away from the UUID-typed id column, where
// they would surface as encoding errors instead of clean failures.
func validPgID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (c *pgCollection) Insert(ctx context.Context, doc Document) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	query := fmt.Sprintf(
		"INSERT INTO %s (id, tenant_id, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)",
		c.table())
	if _, err := c.pool.Exec(ctx, query, id, c.tenantID, doc, now); err != nil {
		return "", translatePgError(err)
	}
	return id, nil
}

func (c *pgCollection) Get(ctx context.Context, id string) (Document, error) {
	if !validPgID(id) {
		return nil, apperr.Validation("id", "malformed id")
	}
	query := fmt.Sprintf(
		"SELECT doc, created_at, updated_at FROM %s WHERE tenant_id = $1 AND id = $2",
		c.table())
	var doc Document
	var createdAt, updatedAt time.Time
	err := c.pool.QueryRow(ctx, query, c.tenantID, id).Scan(&doc, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return mergeMeta(doc, id, createdAt, updatedAt), nil
}

func (c *pgCollection) Find(ctx context.Context, filter Filter, opts FindOptions) ([]Document, error) {
	where, args := c.whereClause(filter)
	query := fmt.Sprintf("SELECT id, doc, created_at, updated_at FROM %s %s", c.table(), where)

	if len(opts.Sort) > 0 {
		orders := make([]string, 0, len(opts.Sort))
		for _, s := range opts.Sort {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			switch s.Field {
			case "created_at", "updated_at":
				orders = append(orders, fmt.Sprintf("%s %s", s.Field, dir))
			default:
				orders = append(orders, fmt.Sprintf("doc->>'%s' %s", s.Field, dir))
			}
		}
		query += " ORDER BY " + strings.Join(orders, ", ")
	} else {
		query += " ORDER BY created_at ASC, id ASC"
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var id string
		var doc Document
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &doc, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, mergeMeta(doc, id, createdAt, updatedAt))
	}
	return docs, rows.Err()
}

func (c *pgCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args := c.whereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", c.table(), where)
	var count int64
	if err := c.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *pgCollection) Update(ctx context.Context, id string, doc Document) error {
	if !validPgID(id) {
		return apperr.Validation("id", "malformed id")
	}
	query := fmt.Sprintf(
		"UPDATE %s SET doc = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2",
		c.table())
	tag, err := c.pool.Exec(ctx, query, c.tenantID, id, doc, time.Now().UTC())
	if err != nil {
		return translatePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(string(c.kind), id)
	}
	return nil
}

func (c *pgCollection) Delete(ctx context.Context, id string) error {
	if !validPgID(id) {
		return apperr.Validation("id", "malformed id")
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE tenant_id = $1 AND id = $2", c.table())
	_, err := c.pool.Exec(ctx, query, c.tenantID, id)
	return err
}

// DeleteGuarded counts referencing documents and deletes in one transaction
// so the count can never go stale between check and delete.
func (c *pgCollection) DeleteGuarded(ctx context.Context, id string, guard Guard) error {
	if !validPgID(id) {
		return apperr.Validation("id", "malformed id")
	}
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	guardCol := &pgCollection{pool: c.pool, tenantID: c.tenantID, kind: guard.Kind}
	where, args := guardCol.whereClause(guard.Filter)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", guardCol.table(), where)

	var count int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return apperr.InUse(string(c.kind), count)
	}

	delQuery := fmt.Sprintf("DELETE FROM %s WHERE tenant_id = $1 AND id = $2", c.table())
	if _, err := tx.Exec(ctx, delQuery, c.tenantID, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// whereClause builds the WHERE clause for a filter, always starting from the
// tenant equality filter.
func (c *pgCollection) whereClause(filter Filter) (string, []any) {
	conds := []string{"tenant_id = $1"}
	args := []any{c.tenantID}
	for _, field := range sortedKeys(filter) {
		args = append(args, fmt.Sprint(filter[field]))
		conds = append(conds, fmt.Sprintf("doc->>'%s' = $%d", field, len(args)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Conflict("a record with the same unique value already exists").WithCause(err)
	}
	return err
}

func mergeMeta(doc Document, id string, createdAt, updatedAt time.Time) Document {
	out := make(Document, len(doc)+3)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	out["created_at"] = createdAt
	out["updated_at"] = updatedAt
	return out
}
