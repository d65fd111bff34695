package domain

import (
	"time"
)

// APIKey grants programmatic access scoped to a user. Only the hash of the
// secret is stored; the plaintext is shown once at creation. A key carries
// its own permission map and an optional site binding, so a leaked key never
// grants more than it was issued for.
type APIKey struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	// Permissions, when non-nil, caps the key below the owner's role. A nil
	// map means the key acts with the owner's full permissions.
	Permissions map[string]bool `json:"permissions,omitempty"`
	// TenantID, when set, binds the key to a single site.
	TenantID   *string    `json:"tenant_id,omitempty"`
	KeyHash    string     `json:"-"`
	Prefix     string     `json:"prefix"` // first characters, for display
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
