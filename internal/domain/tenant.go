package domain

import (
	"time"
)

// Tenant represents one isolated site in the multi-site system. All content
// entities (posts, taxonomies, menus, settings, media) are owned by exactly
// one tenant; users and roles are global.
type Tenant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"` // url-safe name
	DisplayName string    `json:"display_name"`
	Domain      string    `json:"domain,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
