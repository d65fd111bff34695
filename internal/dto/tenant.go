package dto

import (
	"time"

	"github.com/grandslambert/backend-cms/internal/domain"
)

// CreateTenantRequest represents a request to create a site
type CreateTenantRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	DisplayName string `json:"display_name" binding:"required,min=2,max=255"`
	Domain      string `json:"domain" binding:"omitempty,max=255"`
}

// UpdateTenantRequest represents a request to update a site
type UpdateTenantRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=2,max=255"`
	Domain      *string `json:"domain" binding:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
}

// TenantResponse represents site data in responses
type TenantResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Domain      string    `json:"domain,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTenantResponse maps a domain tenant to the response shape
func NewTenantResponse(tenant *domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:          tenant.ID,
		Name:        tenant.Name,
		DisplayName: tenant.DisplayName,
		Domain:      tenant.Domain,
		IsActive:    tenant.IsActive,
		CreatedAt:   tenant.CreatedAt,
		UpdatedAt:   tenant.UpdatedAt,
	}
}

// NewTenantResponses maps a list of domain tenants
func NewTenantResponses(tenants []*domain.Tenant) []TenantResponse {
	out := make([]TenantResponse, 0, len(tenants))
	for _, tenant := range tenants {
		out = append(out, NewTenantResponse(tenant))
	}
	return out
}

// ListTenantsQuery represents query parameters for listing sites
type ListTenantsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	IsActive *bool  `form:"is_active" binding:"omitempty"`
	Search   string `form:"search" binding:"omitempty,max=255"`
}

// SetDefaults sets default values for query parameters
func (q *ListTenantsQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}
