package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// TaxonomyHandler handles taxonomy management HTTP requests
type TaxonomyHandler struct {
	taxonomyService service.TaxonomyService
}

// NewTaxonomyHandler creates a new TaxonomyHandler
func NewTaxonomyHandler(taxonomyService service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

// List retrieves the site's taxonomies
// GET /api/v1/sites/:site_id/taxonomies
func (h *TaxonomyHandler) List(c *gin.Context) {
	taxonomies, err := h.taxonomyService.List(c.Request.Context(), c.Param("site_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(taxonomies))
}

// GetByName retrieves one taxonomy
// GET /api/v1/sites/:site_id/taxonomies/:taxonomy
func (h *TaxonomyHandler) GetByName(c *gin.Context) {
	tx, err := h.taxonomyService.GetByName(c.Request.Context(), c.Param("site_id"), c.Param("taxonomy"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(tx))
}

// Create registers a custom taxonomy on the site
// POST /api/v1/sites/:site_id/taxonomies
func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req dto.CreateTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	tx, err := h.taxonomyService.Create(c.Request.Context(), principalFrom(c), c.Param("site_id"), service.CreateTaxonomyInput{
		Name:         req.Name,
		Labels:       req.Labels,
		Hierarchical: req.Hierarchical,
		PostTypes:    req.PostTypes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(tx))
}

// Update updates a taxonomy
// PUT /api/v1/sites/:site_id/taxonomies/:taxonomy
func (h *TaxonomyHandler) Update(c *gin.Context) {
	var req dto.UpdateTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	tx, err := h.taxonomyService.Update(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("taxonomy"), service.UpdateTaxonomyInput{
		Name:      req.Name,
		Labels:    req.Labels,
		PostTypes: req.PostTypes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(tx))
}

// Delete removes a custom taxonomy
// DELETE /api/v1/sites/:site_id/taxonomies/:taxonomy
func (h *TaxonomyHandler) Delete(c *gin.Context) {
	if err := h.taxonomyService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("taxonomy")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Taxonomy deleted"}))
}
