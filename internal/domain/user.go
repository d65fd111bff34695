package domain

import (
	"time"
)

// User is a global identity. Access to a tenant comes from a SiteMembership;
// super admins bypass membership entirely.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name,omitempty"`
	RoleID       string    `json:"role_id"`
	SuperAdmin   bool      `json:"super_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SiteMembership joins a user to a tenant under a role. A user may hold
// different roles on different tenants; absence of membership means no
// access to that tenant.
type SiteMembership struct {
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}
