package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// PostTypeHandler handles post type management HTTP requests
type PostTypeHandler struct {
	postTypeService service.PostTypeService
}

// NewPostTypeHandler creates a new PostTypeHandler
func NewPostTypeHandler(postTypeService service.PostTypeService) *PostTypeHandler {
	return &PostTypeHandler{postTypeService: postTypeService}
}

// List retrieves the site's post types
// GET /api/v1/sites/:site_id/post-types
func (h *PostTypeHandler) List(c *gin.Context) {
	types, err := h.postTypeService.List(c.Request.Context(), c.Param("site_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(types))
}

// GetByName retrieves one post type
// GET /api/v1/sites/:site_id/post-types/:name
func (h *PostTypeHandler) GetByName(c *gin.Context) {
	pt, err := h.postTypeService.GetByName(c.Request.Context(), c.Param("site_id"), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(pt))
}

// Create registers a custom post type on the site
// POST /api/v1/sites/:site_id/post-types
func (h *PostTypeHandler) Create(c *gin.Context) {
	var req dto.CreatePostTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	pt, err := h.postTypeService.Create(c.Request.Context(), principalFrom(c), c.Param("site_id"), service.CreatePostTypeInput{
		Name:         req.Name,
		Labels:       req.Labels,
		Hierarchical: req.Hierarchical,
		Supports:     req.Supports,
		Taxonomies:   req.Taxonomies,
		ShowInMenu:   req.ShowInMenu,
		MenuPosition: req.MenuPosition,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(pt))
}

// Update updates a post type
// PUT /api/v1/sites/:site_id/post-types/:name
func (h *PostTypeHandler) Update(c *gin.Context) {
	var req dto.UpdatePostTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	pt, err := h.postTypeService.Update(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("name"), service.UpdatePostTypeInput{
		Name:         req.Name,
		Labels:       req.Labels,
		Supports:     req.Supports,
		Taxonomies:   req.Taxonomies,
		ShowInMenu:   req.ShowInMenu,
		MenuPosition: req.MenuPosition,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(pt))
}

// Delete removes a custom post type
// DELETE /api/v1/sites/:site_id/post-types/:name
func (h *PostTypeHandler) Delete(c *gin.Context) {
	if err := h.postTypeService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Post type deleted"}))
}
