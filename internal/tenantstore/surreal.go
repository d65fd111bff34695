package tenantstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	surrealdb "github.com/surrealdb/surrealdb.go"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// SurrealStrategy stores each tenant's documents in a dedicated table named
// tenant_<id>_<kind>. Table names are derived only from ids that parsed as
// UUIDs, never from raw request input. Missing tables are a hard error;
// Provision is the only place tables are created.
type SurrealStrategy struct {
	db *surrealdb.DB

	// Guarded deletes serialize per tenant so the reference count cannot go
	// stale between check and delete.
	mu sync.Mutex
}

// NewSurrealStrategy creates a SurrealStrategy over an authenticated client.
func NewSurrealStrategy(db *surrealdb.DB) *SurrealStrategy {
	return &SurrealStrategy{db: db}
}

// SurrealTableName derives the physical table name for one tenant's
// collection. It returns an error for any tenant id that is not a UUID.
func SurrealTableName(tenantID string, kind Kind) (string, error) {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return "", fmt.Errorf("tenant id %q is not a valid uuid", tenantID)
	}
	compact := strings.ReplaceAll(id.String(), "-", "")
	return fmt.Sprintf("tenant_%s_%s", compact, kind), nil
}

// Collection returns the per-tenant table handle.
func (s *SurrealStrategy) Collection(tenantID string, kind Kind) Collection {
	return &surrealCollection{strategy: s, tenantID: tenantID, kind: kind}
}

// Provision defines the tenant's tables and unique indexes.
func (s *SurrealStrategy) Provision(ctx context.Context, tenantID string) error {
	for _, kind := range AllKinds() {
		table, err := SurrealTableName(tenantID, kind)
		if err != nil {
			return err
		}
		stmts := []string{fmt.Sprintf("DEFINE TABLE %s SCHEMALESS;", table)}
		for _, uc := range Constraints(kind) {
			stmts = append(stmts, fmt.Sprintf(
				"DEFINE INDEX ux_%s ON TABLE %s COLUMNS %s UNIQUE;",
				uc.Name, table, strings.Join(uc.Fields, ", ")))
		}
		if _, err := s.db.Query(strings.Join(stmts, " "), nil); err != nil {
			return fmt.Errorf("provision table %s: %w", table, err)
		}
	}
	return nil
}

// Destroy removes the tenant's tables and everything in them.
func (s *SurrealStrategy) Destroy(ctx context.Context, tenantID string) error {
	for _, kind := range AllKinds() {
		table, err := SurrealTableName(tenantID, kind)
		if err != nil {
			return err
		}
		if _, err := s.db.Query(fmt.Sprintf("REMOVE TABLE %s;", table), nil); err != nil {
			return fmt.Errorf("remove table %s: %w", table, err)
		}
	}
	return nil
}

type surrealCollection struct {
	strategy *SurrealStrategy
	tenantID string
	kind     Kind
}

func (c *surrealCollection) table() (string, error) {
	return SurrealTableName(c.tenantID, c.kind)
}

func (c *surrealCollection) Insert(ctx context.Context, doc Document) (string, error) {
	table, err := c.table()
	if err != nil {
		return "", err
	}
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	now := time.Now().UTC().Format(time.RFC3339Nano)

	data := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		data[k] = v
	}
	data["created_at"] = now
	data["updated_at"] = now

	if _, err := c.strategy.db.Create(table+":"+id, data); err != nil {
		return "", translateSurrealError(err)
	}
	return id, nil
}

func (c *surrealCollection) Get(ctx context.Context, id string) (Document, error) {
	table, err := c.table()
	if err != nil {
		return nil, err
	}
	if !validSurrealID(id) {
		return nil, nil
	}
	res, err := c.strategy.db.Query(
		fmt.Sprintf("SELECT * FROM %s:%s;", table, id), nil)
	if err != nil {
		return nil, err
	}
	docs := unwrapSurrealRows(res)
	if len(docs) == 0 {
		return nil, nil
	}
	return normalizeSurrealDoc(docs[0]), nil
}

func (c *surrealCollection) Find(ctx context.Context, filter Filter, opts FindOptions) ([]Document, error) {
	table, err := c.table()
	if err != nil {
		return nil, err
	}
	where, vars := surrealWhere(filter)
	query := fmt.Sprintf("SELECT * FROM %s%s", table, where)

	if len(opts.Sort) > 0 {
		orders := make([]string, 0, len(opts.Sort))
		for _, s := range opts.Sort {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			orders = append(orders, fmt.Sprintf("%s %s", s.Field, dir))
		}
		query += " ORDER BY " + strings.Join(orders, ", ")
	} else {
		query += " ORDER BY created_at ASC"
	}
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" START %d", opts.Offset)
	}

	res, err := c.strategy.db.Query(query+";", vars)
	if err != nil {
		return nil, err
	}
	rows := unwrapSurrealRows(res)
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, normalizeSurrealDoc(row))
	}
	return docs, nil
}

func (c *surrealCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	table, err := c.table()
	if err != nil {
		return 0, err
	}
	where, vars := surrealWhere(filter)
	res, err := c.strategy.db.Query(
		fmt.Sprintf("SELECT count() AS n FROM %s%s GROUP ALL;", table, where), vars)
	if err != nil {
		return 0, err
	}
	rows := unwrapSurrealRows(res)
	if len(rows) == 0 {
		return 0, nil
	}
	if n, ok := rows[0]["n"].(float64); ok {
		return int64(n), nil
	}
	return 0, nil
}

func (c *surrealCollection) Update(ctx context.Context, id string, doc Document) error {
	table, err := c.table()
	if err != nil {
		return err
	}
	if !validSurrealID(id) {
		return apperr.NotFound(string(c.kind), id)
	}
	existing, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound(string(c.kind), id)
	}

	data := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		data[k] = v
	}
	if created, ok := existing["created_at"]; ok {
		data["created_at"] = formatSurrealTime(created)
	}
	data["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := c.strategy.db.Update(table+":"+id, data); err != nil {
		return translateSurrealError(err)
	}
	return nil
}

func (c *surrealCollection) Delete(ctx context.Context, id string) error {
	table, err := c.table()
	if err != nil {
		return err
	}
	if !validSurrealID(id) {
		return nil
	}
	_, err = c.strategy.db.Delete(table + ":" + id)
	return err
}

func (c *surrealCollection) DeleteGuarded(ctx context.Context, id string, guard Guard) error {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	guardCol := &surrealCollection{strategy: c.strategy, tenantID: c.tenantID, kind: guard.Kind}
	count, err := guardCol.Count(ctx, guard.Filter)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.InUse(string(c.kind), count)
	}
	return c.Delete(ctx, id)
}

// surrealWhere builds a parameterized WHERE clause from a filter.
func surrealWhere(filter Filter) (string, map[string]any) {
	if len(filter) == 0 {
		return "", nil
	}
	vars := make(map[string]any, len(filter))
	conds := make([]string, 0, len(filter))
	for i, field := range sortedKeys(filter) {
		name := fmt.Sprintf("f%d", i)
		vars[name] = filter[field]
		conds = append(conds, fmt.Sprintf("%s = $%s", field, name))
	}
	return " WHERE " + strings.Join(conds, " AND "), vars
}

// validSurrealID accepts only the compact hex ids this strategy generates.
func validSurrealID(id string) bool {
	if len(id) != 32 {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// unwrapSurrealRows flattens the client's query response into row maps. The
// response is a list of statement results, each carrying a result list.
func unwrapSurrealRows(res any) []map[string]any {
	stmts, ok := res.([]any)
	if !ok {
		return nil
	}
	var rows []map[string]any
	for _, stmt := range stmts {
		m, ok := stmt.(map[string]any)
		if !ok {
			continue
		}
		switch result := m["result"].(type) {
		case []any:
			for _, r := range result {
				if row, ok := r.(map[string]any); ok {
					rows = append(rows, row)
				}
			}
		case map[string]any:
			rows = append(rows, result)
		}
	}
	return rows
}

// normalizeSurrealDoc strips the table prefix from the record id and parses
// the timestamp fields so surreal-backed reads look like postgres-backed
// ones.
func normalizeSurrealDoc(row map[string]any) Document {
	doc := make(Document, len(row))
	for k, v := range row {
		doc[k] = v
	}
	if id, ok := doc["id"].(string); ok {
		if i := strings.LastIndex(id, ":"); i >= 0 {
			doc["id"] = id[i+1:]
		}
	}
	for _, field := range []string{"created_at", "updated_at"} {
		if s, ok := doc[field].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				doc[field] = t
			}
		}
	}
	return doc
}

func formatSurrealTime(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return v
}

func translateSurrealError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "index") || strings.Contains(msg, "already") {
		return apperr.Conflict("a record with the same unique value already exists").WithCause(err)
	}
	return err
}
