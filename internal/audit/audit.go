// Package audit records activity log entries and computes field-level diffs
// for the activity read API.
package audit

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/pkg/logger"
)

// Store persists activity entries. The postgres activity repository backs
// this in production.
type Store interface {
	Insert(ctx context.Context, entry *domain.ActivityLogEntry) error
}

// RequestMeta is request-level metadata stamped on every entry written while
// handling that request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta returns a context carrying the request metadata. The HTTP
// layer installs it once per request.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}

// Logger writes audit entries. Entries are built entirely by the caller;
// nothing is inferred at write time. Writes are synchronous with the request
// so an acknowledged mutation is always on the trail.
type Logger struct {
	store Store
}

// NewLogger creates a Logger over the given store.
func NewLogger(store Store) *Logger {
	return &Logger{store: store}
}

// Record persists one entry. The entry is append-only; an id, timestamp and
// the request metadata from the context are assigned here if the caller left
// them empty. A failed write is logged server-side but never fails the
// originating request.
func (l *Logger) Record(ctx context.Context, entry *domain.ActivityLogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if meta, ok := requestMetaFrom(ctx); ok {
		if entry.IPAddress == "" {
			entry.IPAddress = meta.IPAddress
		}
		if entry.UserAgent == "" {
			entry.UserAgent = meta.UserAgent
		}
	}
	if err := l.store.Insert(ctx, entry); err != nil {
		logger.ErrorCtx(ctx, "failed to write activity log entry",
			zap.String("action", entry.Action),
			zap.String("object_type", entry.ObjectType),
			zap.Error(err),
		)
	}
}

// DiffChanges reduces a before/after snapshot pair to the fields that
// actually changed. It walks the union of keys and keeps a key when the two
// values differ under deep equality. Unchanged entries never ship to the
// caller; two equal snapshots produce two empty maps.
func DiffChanges(before, after map[string]any) (map[string]any, map[string]any) {
	beforeOut := make(map[string]any)
	afterOut := make(map[string]any)

	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	for k := range keys {
		b, hasBefore := before[k]
		a, hasAfter := after[k]
		if hasBefore && hasAfter && reflect.DeepEqual(b, a) {
			continue
		}
		if hasBefore {
			beforeOut[k] = b
		}
		if hasAfter {
			afterOut[k] = a
		}
	}
	return beforeOut, afterOut
}
