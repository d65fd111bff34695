package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// TenantHandler handles site lifecycle HTTP requests
type TenantHandler struct {
	tenantService service.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// Create handles site creation
// POST /api/v1/sites
func (h *TenantHandler) Create(c *gin.Context) {
	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), principalFrom(c), service.CreateTenantInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Domain:      req.Domain,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.NewTenantResponse(tenant)))
}

// GetByID handles retrieving a site by ID
// GET /api/v1/sites/:site_id
func (h *TenantHandler) GetByID(c *gin.Context) {
	tenant, err := h.tenantService.GetByID(c.Request.Context(), c.Param("site_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewTenantResponse(tenant)))
}

// List handles retrieving sites with pagination
// GET /api/v1/sites
func (h *TenantHandler) List(c *gin.Context) {
	var query dto.ListTenantsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	query.SetDefaults()

	tenants, total, err := h.tenantService.List(c.Request.Context(), query.Page, query.Limit, query.IsActive, query.Search)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(dto.NewTenantResponses(tenants), query.Page, query.Limit, len(tenants), int64(total)))
}

// Update handles site update
// PUT /api/v1/sites/:site_id
func (h *TenantHandler) Update(c *gin.Context) {
	var req dto.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), principalFrom(c), c.Param("site_id"), service.UpdateTenantInput{
		DisplayName: req.DisplayName,
		Domain:      req.Domain,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewTenantResponse(tenant)))
}

// Delete handles site deletion, cascading to all site content
// DELETE /api/v1/sites/:site_id
func (h *TenantHandler) Delete(c *gin.Context) {
	if err := h.tenantService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Site deleted"}))
}
