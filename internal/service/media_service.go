package service

import (
	"context"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// CreateMediaInput carries the metadata recorded for an uploaded file.
type CreateMediaInput struct {
	FileName  string
	Path      string
	MimeType  string
	SizeBytes int64
	Title     string
	AltText   string
	Caption   string
	Meta      map[string]any
}

// UpdateMediaInput carries optional updates to a media record's descriptive
// attributes. The stored file itself never changes.
type UpdateMediaInput struct {
	Title   *string
	AltText *string
	Caption *string
	Meta    map[string]any
}

// MediaService defines the interface for media library management
type MediaService interface {
	// List retrieves media records of a tenant
	List(ctx context.Context, tenantID string, page, limit int, mimeType string) ([]*domain.Media, int64, error)
	// GetByID retrieves a media record by ID
	GetByID(ctx context.Context, tenantID, id string) (*domain.Media, error)
	// Create records an uploaded file
	Create(ctx context.Context, actor Principal, tenantID string, input CreateMediaInput) (*domain.Media, error)
	// Update updates a media record's descriptive attributes
	Update(ctx context.Context, actor Principal, tenantID, id string, input UpdateMediaInput) (*domain.Media, error)
	// Delete removes a media record
	Delete(ctx context.Context, actor Principal, tenantID, id string) error
}

type mediaService struct {
	stores  *tenantstore.Registry
	auditor *audit.Logger
}

// NewMediaService creates a new MediaService
func NewMediaService(stores *tenantstore.Registry, auditor *audit.Logger) MediaService {
	return &mediaService{stores: stores, auditor: auditor}
}

// List retrieves media records of a tenant
func (s *mediaService) List(ctx context.Context, tenantID string, page, limit int, mimeType string) ([]*domain.Media, int64, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMedia)
	if err != nil {
		return nil, 0, err
	}
	var filter tenantstore.Filter
	if mimeType != "" {
		filter = tenantstore.Filter{"mime_type": mimeType}
	}
	total, err := col.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	docs, err := col.Find(ctx, filter, tenantstore.FindOptions{
		Sort:   []tenantstore.SortField{{Field: "created_at", Desc: true}},
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, err
	}
	records := make([]*domain.Media, 0, len(docs))
	for _, doc := range docs {
		var m domain.Media
		if err := tenantstore.DecodeDocument(doc, &m); err != nil {
			return nil, 0, err
		}
		records = append(records, &m)
	}
	return records, total, nil
}

// GetByID retrieves a media record by ID
func (s *mediaService) GetByID(ctx context.Context, tenantID, id string) (*domain.Media, error) {
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMedia)
	if err != nil {
		return nil, err
	}
	doc, err := col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("media", id)
	}
	var m domain.Media
	if err := tenantstore.DecodeDocument(doc, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create records an uploaded file
func (s *mediaService) Create(ctx context.Context, actor Principal, tenantID string, input CreateMediaInput) (*domain.Media, error) {
	if input.FileName == "" {
		return nil, apperr.Validation("file_name", "file name is required")
	}
	if input.Path == "" {
		return nil, apperr.Validation("path", "path is required")
	}
	if input.MimeType == "" {
		return nil, apperr.Validation("mime_type", "mime type is required")
	}

	m := domain.Media{
		FileName:   input.FileName,
		Path:       input.Path,
		MimeType:   input.MimeType,
		SizeBytes:  input.SizeBytes,
		Title:      input.Title,
		AltText:    input.AltText,
		Caption:    input.Caption,
		UploaderID: actor.UserID,
		Meta:       input.Meta,
	}
	if m.Title == "" {
		m.Title = m.FileName
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMedia)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(m)
	if err != nil {
		return nil, err
	}
	id, err := col.Insert(ctx, doc)
	if err != nil {
		return nil, err
	}
	m.ID = id

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "media",
		ObjectID:       id,
		ObjectLabel:    m.FileName,
	})
	return &m, nil
}

// Update updates a media record's descriptive attributes
func (s *mediaService) Update(ctx context.Context, actor Principal, tenantID, id string, input UpdateMediaInput) (*domain.Media, error) {
	m, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	before, err := tenantstore.EncodeDocument(m)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		m.Title = *input.Title
	}
	if input.AltText != nil {
		m.AltText = *input.AltText
	}
	if input.Caption != nil {
		m.Caption = *input.Caption
	}
	if input.Meta != nil {
		m.Meta = input.Meta
	}

	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMedia)
	if err != nil {
		return nil, err
	}
	doc, err := tenantstore.EncodeDocument(m)
	if err != nil {
		return nil, err
	}
	if err := col.Update(ctx, id, doc); err != nil {
		return nil, err
	}

	changesBefore, changesAfter := audit.DiffChanges(before, doc)
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "media",
		ObjectID:       id,
		ObjectLabel:    m.FileName,
		ChangesBefore:  changesBefore,
		ChangesAfter:   changesAfter,
	})
	return m, nil
}

// Delete removes a media record
func (s *mediaService) Delete(ctx context.Context, actor Principal, tenantID, id string) error {
	m, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	col, err := s.stores.Collection(ctx, tenantID, tenantstore.KindMedia)
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		TenantID:       &tenantID,
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "media",
		ObjectID:       id,
		ObjectLabel:    m.FileName,
	})
	return nil
}
