package dto

import (
	"time"
)

// ListActivityQuery represents query parameters for the activity log
type ListActivityQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	TenantID   string `form:"tenant_id" binding:"omitempty"`
	ActorID    string `form:"actor_id" binding:"omitempty"`
	Action     string `form:"action" binding:"omitempty,max=60"`
	ObjectType string `form:"object_type" binding:"omitempty,max=60"`
}

// SetDefaults sets default values for query parameters
func (q *ListActivityQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// CreateAPIKeyRequest represents a request to issue an API key. Omitting
// permissions issues a key with the owner's full permissions; tenant_id
// binds the key to a single site.
type CreateAPIKeyRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	Permissions map[string]bool `json:"permissions"`
	TenantID    *string         `json:"tenant_id"`
	ExpiresAt   *time.Time      `json:"expires_at"`
}

// APIKeyCreatedResponse carries the one-time plaintext secret alongside the
// stored key record
type APIKeyCreatedResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Prefix      string          `json:"prefix"`
	Secret      string          `json:"secret"` // shown exactly once
	Permissions map[string]bool `json:"permissions,omitempty"`
	TenantID    *string         `json:"tenant_id,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}
