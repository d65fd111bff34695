package service

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// SettingService defines the interface for tenant settings
type SettingService interface {
	// List retrieves all settings of a tenant
	List(ctx context.Context, tenantID string, autoloadOnly bool) ([]*domain.Setting, error)
	// Get retrieves a setting by key
	Get(ctx context.Context, tenantID, key string) (*domain.Setting, error)
	// Set creates or replaces a setting value by key
	Set(ctx context.Context, actor Principal, tenantID, key string, value any, autoload bool) (*domain.Setting, error)
	// Delete removes a setting by key
	Delete(ctx context.Context, actor Principal, tenantID, key string) error
}

type settingService struct {
	stores  *tenantstore.Registry
	auditor *audit.Logger
}

// NewSettingService creates a new SettingService
func NewSettingService(stores *tenantstore.Registry, auditor *audit.Logger) SettingService {
	return &settingService{stores: stores, auditor: auditor}
}

// List retrieves all settings of a tenant
func (s *settingService) List(ctx context.Context, tenantID string, autoloadOnly bool) ([]*domain.Setting, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindSettings)
	if err != nil {
		return nil, err
	}
	var filter tenantstore.Filter
	if autoloadOnly {
		filter = tenantstore.Filter{"autoload": true}
	}
	docs, err := col.Find(ctx, filter, tenantstore.FindOptions{
		Sort: []tenantstore.SortField{{Field: "key"}},
	})
	if err != nil {
		return nil, err
	}
	settings := make([]*domain.Setting, 0, len(docs))
	for _, doc := range docs {
		var st domain.Setting
		if err := tenantstore.DecodeDocument(doc, &st); err != nil {
			return nil, err
		}
		settings = append(settings, &st)
	}
	return settings, nil
}

// Get retrieves a setting by key
func (s *settingService) Get(ctx context.Context, tenantID, key string) (*domain.Setting, error) {
	st, err := s.find(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apperr.NotFound("setting", key)
	}
	return st, nil
}

// Set creates or replaces a setting value by key
func (s *settingService) Set(ctx context.Context, actor Principal, tenantID, key string, value any, autoload bool) (*domain.Setting, error) {
	if key == "" {
		return nil, apperr.Validation("key", "key is required")
	}
	existing, err := s.find(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindSettings)
	if err != nil {
		return nil, err
	}

	st := domain.Setting{Key: key, Value: value, Autoload: autoload}
	doc, err := tenantstore.EncodeDocument(st)
	if err != nil {
		return nil, err
	}

	entry := &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		ObjectType:     "setting",
		ObjectLabel:    key,
	}
	if existing == nil {
		id, err := col.Insert(ctx, doc)
		if err != nil {
			return nil, err
		}
		st.ID = id
		entry.Action = domain.ActionCreate
		entry.ObjectID = id
	} else {
		st.ID = existing.ID
		if err := col.Update(ctx, existing.ID, doc); err != nil {
			return nil, err
		}
		before, err := tenantstore.EncodeDocument(existing)
		if err != nil {
			return nil, err
		}
		entry.Action = domain.ActionUpdate
		entry.ObjectID = existing.ID
		entry.ChangesBefore, entry.ChangesAfter = audit.DiffChanges(before, doc)
	}

	s.auditor.Record(ctx, entry)
	return &st, nil
}

// Delete removes a setting by key
func (s *settingService) Delete(ctx context.Context, actor Principal, tenantID, key string) error {
	st, err := s.Get(ctx, tenantID, key)
	if err != nil {
		return err
	}
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindSettings)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, st.ID); err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "setting",
		ObjectID:       st.ID,
		ObjectLabel:    key,
	})
	return nil
}

func (s *settingService) find(ctx context.Context, tenantID, key string) (*domain.Setting, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindSettings)
	if err != nil {
		return nil, err
	}
	docs, err := col.Find(ctx, tenantstore.Filter{"key": key}, tenantstore.FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var st domain.Setting
	if err := tenantstore.DecodeDocument(docs[0], &st); err != nil {
		return nil, err
	}
	return &st, nil
}
