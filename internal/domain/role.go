package domain

import (
	"time"
)

// Built-in role names. Built-ins cannot be deleted.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleAuthor     = "author"
	RoleSubscriber = "subscriber"
)

// Role carries a named permission map. Permissions mapped to true are
// granted; absent or false permissions are denied.
type Role struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Permissions map[string]bool `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsBuiltIn reports whether the role is one of the protected built-ins.
func (r *Role) IsBuiltIn() bool {
	switch r.Name {
	case RoleSuperAdmin, RoleAdmin, RoleEditor, RoleAuthor, RoleSubscriber:
		return true
	}
	return false
}
