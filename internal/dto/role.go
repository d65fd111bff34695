package dto

import (
	"github.com/grandslambert/backend-cms/internal/domain"
)

// CreateRoleRequest represents a request to create a custom role
type CreateRoleRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=60"`
	DisplayName string          `json:"display_name" binding:"omitempty,max=255"`
	Permissions map[string]bool `json:"permissions"`
}

// UpdateRoleRequest represents a request to update a role
type UpdateRoleRequest struct {
	DisplayName *string         `json:"display_name" binding:"omitempty,max=255"`
	Permissions map[string]bool `json:"permissions"`
}

// RoleResponse represents role data in responses
type RoleResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Permissions map[string]bool `json:"permissions"`
	BuiltIn     bool            `json:"built_in"`
}

// NewRoleResponse maps a domain role to the response shape
func NewRoleResponse(role *domain.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		DisplayName: role.DisplayName,
		Permissions: role.Permissions,
		BuiltIn:     role.IsBuiltIn(),
	}
}

// NewRoleResponses maps a list of domain roles
func NewRoleResponses(roles []*domain.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, NewRoleResponse(role))
	}
	return out
}

// AddMemberRequest represents a request to add a user to a site
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}

// ChangeMemberRoleRequest represents a request to change a member's role
type ChangeMemberRoleRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

// MembershipResponse represents a site membership in responses
type MembershipResponse struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	RoleID   string `json:"role_id"`
}

// NewMembershipResponse maps a domain membership to the response shape
func NewMembershipResponse(m *domain.SiteMembership) MembershipResponse {
	return MembershipResponse{TenantID: m.TenantID, UserID: m.UserID, RoleID: m.RoleID}
}

// NewMembershipResponses maps a list of domain memberships
func NewMembershipResponses(memberships []*domain.SiteMembership) []MembershipResponse {
	out := make([]MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, NewMembershipResponse(m))
	}
	return out
}
