package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

const (
	apiKeySecretBytes  = 24
	apiKeyPrefixLength = 8
)

// CreateAPIKeyInput carries the fields for a new key. A nil Permissions map
// issues a key with the owner's full permissions; a set TenantID binds the
// key to one site.
type CreateAPIKeyInput struct {
	UserID      string
	Name        string
	Permissions map[string]bool
	TenantID    *string
	ExpiresAt   *time.Time
}

// APIKeyService defines the interface for API key management
type APIKeyService interface {
	// Create issues a new key; the plaintext secret is returned exactly once
	Create(ctx context.Context, actor Principal, input CreateAPIKeyInput) (*domain.APIKey, string, error)
	// ListByUser retrieves a user's keys
	ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error)
	// Revoke deactivates a key
	Revoke(ctx context.Context, actor Principal, userID, id string) error
	// Delete removes a key record
	Delete(ctx context.Context, actor Principal, userID, id string) error
	// Authenticate resolves a presented secret to its owner and the key's
	// own scope
	Authenticate(ctx context.Context, secret string) (*domain.User, *domain.APIKey, error)
}

type apiKeyService struct {
	keys    repository.APIKeyRepository
	users   repository.UserRepository
	auditor *audit.Logger
}

// NewAPIKeyService creates a new APIKeyService
func NewAPIKeyService(keys repository.APIKeyRepository, users repository.UserRepository, auditor *audit.Logger) APIKeyService {
	return &apiKeyService{keys: keys, users: users, auditor: auditor}
}

// Create issues a new key; the plaintext secret is returned exactly once
func (s *apiKeyService) Create(ctx context.Context, actor Principal, input CreateAPIKeyInput) (*domain.APIKey, string, error) {
	if input.Name == "" {
		return nil, "", apperr.Validation("name", "name is required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return nil, "", apperr.Validation("expires_at", "expiry must be in the future")
	}
	if input.TenantID != nil {
		if _, err := uuid.Parse(*input.TenantID); err != nil {
			return nil, "", apperr.Validation("tenant_id", "malformed tenant_id")
		}
	}
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apperr.NotFound("user", input.UserID)
	}

	secret, err := generateAPIKeySecret()
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	key := &domain.APIKey{
		UserID:      input.UserID,
		Name:        input.Name,
		Permissions: input.Permissions,
		TenantID:    input.TenantID,
		KeyHash:     hashAPIKeySecret(secret),
		Prefix:      secret[:apiKeyPrefixLength],
		ExpiresAt:   input.ExpiresAt,
		IsActive:    true,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, "", err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionCreate,
		ObjectType:     "api_key",
		ObjectID:       key.ID,
		ObjectLabel:    key.Name,
	})
	return key, secret, nil
}

// ListByUser retrieves a user's keys
func (s *apiKeyService) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	return s.keys.ListByUser(ctx, userID)
}

// Revoke deactivates a key
func (s *apiKeyService) Revoke(ctx context.Context, actor Principal, userID, id string) error {
	key, err := s.ownedKey(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.keys.Revoke(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionUpdate,
		ObjectType:     "api_key",
		ObjectID:       id,
		ObjectLabel:    key.Name,
		ChangesBefore:  map[string]any{"is_active": true},
		ChangesAfter:   map[string]any{"is_active": false},
	})
	return nil
}

// Delete removes a key record
func (s *apiKeyService) Delete(ctx context.Context, actor Principal, userID, id string) error {
	key, err := s.ownedKey(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.keys.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        actor.AuditActorID(),
		ImpersonatorID: actor.ImpersonatorID,
		Action:         domain.ActionDelete,
		ObjectType:     "api_key",
		ObjectID:       id,
		ObjectLabel:    key.Name,
	})
	return nil
}

// Authenticate resolves a presented secret to its owner and the key's own
// scope. Every failure path returns the same UNAUTHORIZED error; a caller
// learns nothing about which check failed.
func (s *apiKeyService) Authenticate(ctx context.Context, secret string) (*domain.User, *domain.APIKey, error) {
	if secret == "" {
		return nil, nil, apperr.Unauthorized("invalid api key")
	}
	key, err := s.keys.GetByHash(ctx, hashAPIKeySecret(secret))
	if err != nil {
		return nil, nil, err
	}
	if key == nil || !key.IsActive || key.Expired(time.Now()) {
		return nil, nil, apperr.Unauthorized("invalid api key")
	}
	user, err := s.users.GetByID(ctx, key.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil, apperr.Unauthorized("invalid api key")
	}
	if err := s.keys.TouchLastUsed(ctx, key.ID, time.Now().UTC()); err != nil {
		return nil, nil, err
	}
	return user, key, nil
}

func (s *apiKeyService) ownedKey(ctx context.Context, userID, id string) (*domain.APIKey, error) {
	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if key == nil || key.UserID != userID {
		return nil, apperr.NotFound("api key", id)
	}
	return key, nil
}

func generateAPIKeySecret() (string, error) {
	raw := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func hashAPIKeySecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
