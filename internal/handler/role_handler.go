package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// RoleHandler handles role management HTTP requests
type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Create handles custom role creation
// POST /api/v1/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), principalFrom(c), req.Name, req.DisplayName, req.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.NewRoleResponse(role)))
}

// GetByID handles retrieving a role by ID
// GET /api/v1/roles/:id
func (h *RoleHandler) GetByID(c *gin.Context) {
	role, err := h.roleService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewRoleResponse(role)))
}

// List handles retrieving all roles
// GET /api/v1/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewRoleResponses(roles)))
}

// Update handles role update
// PUT /api/v1/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), principalFrom(c), c.Param("id"), req.DisplayName, req.Permissions)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewRoleResponse(role)))
}

// Delete handles custom role deletion
// DELETE /api/v1/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.roleService.Delete(c.Request.Context(), principalFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Role deleted"}))
}
