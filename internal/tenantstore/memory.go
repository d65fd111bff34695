package tenantstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// MemoryStrategy is an in-memory Strategy used by tests and by the service
// test suites. It enforces the same unique constraints the real strategies
// install, so conflict behavior can be exercised without a database.
type MemoryStrategy struct {
	mu   sync.Mutex
	data map[string]map[string]*memoryRecord // tenant/kind key -> id -> record
}

type memoryRecord struct {
	doc       Document
	createdAt time.Time
	updatedAt time.Time
}

// NewMemoryStrategy creates an empty MemoryStrategy.
func NewMemoryStrategy() *MemoryStrategy {
	return &MemoryStrategy{data: make(map[string]map[string]*memoryRecord)}
}

// Collection returns the tenant-scoped handle.
func (s *MemoryStrategy) Collection(tenantID string, kind Kind) Collection {
	return &memoryCollection{strategy: s, tenantID: tenantID, kind: kind}
}

// Provision creates the tenant's buckets.
func (s *MemoryStrategy) Provision(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range AllKinds() {
		key := bucketKey(tenantID, kind)
		if _, ok := s.data[key]; !ok {
			s.data[key] = make(map[string]*memoryRecord)
		}
	}
	return nil
}

// Destroy removes the tenant's buckets.
func (s *MemoryStrategy) Destroy(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range AllKinds() {
		delete(s.data, bucketKey(tenantID, kind))
	}
	return nil
}

func bucketKey(tenantID string, kind Kind) string {
	return tenantID + "/" + string(kind)
}

func (s *MemoryStrategy) bucket(tenantID string, kind Kind) map[string]*memoryRecord {
	key := bucketKey(tenantID, kind)
	b, ok := s.data[key]
	if !ok {
		b = make(map[string]*memoryRecord)
		s.data[key] = b
	}
	return b
}

type memoryCollection struct {
	strategy *MemoryStrategy
	tenantID string
	kind     Kind
}

func (c *memoryCollection) Insert(ctx context.Context, doc Document) (string, error) {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	bucket := c.strategy.bucket(c.tenantID, c.kind)
	if err := c.checkUnique(bucket, doc, ""); err != nil {
		return "", err
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	bucket[id] = &memoryRecord{doc: cloneDoc(doc), createdAt: now, updatedAt: now}
	return id, nil
}

func (c *memoryCollection) Get(ctx context.Context, id string) (Document, error) {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	rec, ok := c.strategy.bucket(c.tenantID, c.kind)[id]
	if !ok {
		return nil, nil
	}
	return mergeMeta(rec.doc, id, rec.createdAt, rec.updatedAt), nil
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter, opts FindOptions) ([]Document, error) {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	bucket := c.strategy.bucket(c.tenantID, c.kind)
	docs := make([]Document, 0)
	for id, rec := range bucket {
		if matchesFilter(rec.doc, filter) {
			docs = append(docs, mergeMeta(rec.doc, id, rec.createdAt, rec.updatedAt))
		}
	}

	sortFields := opts.Sort
	if len(sortFields) == 0 {
		sortFields = []SortField{{Field: "created_at"}, {Field: "id"}}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, s := range sortFields {
			a, b := fieldText(docs[i], s.Field), fieldText(docs[j], s.Field)
			if a == b {
				continue
			}
			if s.Desc {
				return a > b
			}
			return a < b
		}
		return false
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(docs) {
			return []Document{}, nil
		}
		docs = docs[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(docs) {
		docs = docs[:opts.Limit]
	}
	return docs, nil
}

func (c *memoryCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	var count int64
	for _, rec := range c.strategy.bucket(c.tenantID, c.kind) {
		if matchesFilter(rec.doc, filter) {
			count++
		}
	}
	return count, nil
}

func (c *memoryCollection) Update(ctx context.Context, id string, doc Document) error {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	bucket := c.strategy.bucket(c.tenantID, c.kind)
	rec, ok := bucket[id]
	if !ok {
		return apperr.NotFound(string(c.kind), id)
	}
	if err := c.checkUnique(bucket, doc, id); err != nil {
		return err
	}
	rec.doc = cloneDoc(doc)
	rec.updatedAt = time.Now().UTC()
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) error {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	delete(c.strategy.bucket(c.tenantID, c.kind), id)
	return nil
}

func (c *memoryCollection) DeleteGuarded(ctx context.Context, id string, guard Guard) error {
	c.strategy.mu.Lock()
	defer c.strategy.mu.Unlock()

	var count int64
	for _, rec := range c.strategy.bucket(c.tenantID, guard.Kind) {
		if matchesFilter(rec.doc, guard.Filter) {
			count++
		}
	}
	if count > 0 {
		return apperr.InUse(string(c.kind), count)
	}
	delete(c.strategy.bucket(c.tenantID, c.kind), id)
	return nil
}

func (c *memoryCollection) checkUnique(bucket map[string]*memoryRecord, doc Document, selfID string) error {
	for _, uc := range Constraints(c.kind) {
		key, ok := constraintKey(doc, uc)
		if !ok {
			continue
		}
		for id, rec := range bucket {
			if id == selfID {
				continue
			}
			other, ok := constraintKey(rec.doc, uc)
			if ok && other == key {
				return apperr.Conflict("a record with the same unique value already exists")
			}
		}
	}
	return nil
}

// constraintKey builds the comparison key for a unique constraint. Partial
// constraints skip documents with an empty constrained field.
func constraintKey(doc Document, uc UniqueConstraint) (string, bool) {
	parts := make([]string, 0, len(uc.Fields))
	for _, f := range uc.Fields {
		v := fieldText(doc, f)
		if uc.Partial && v == "" {
			return "", false
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "\x00"), true
}

func matchesFilter(doc Document, filter Filter) bool {
	for k, v := range filter {
		if fieldText(doc, k) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func fieldText(doc Document, field string) string {
	v, ok := doc[field]
	if !ok || v == nil {
		return ""
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
