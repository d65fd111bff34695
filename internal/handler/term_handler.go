package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// TermHandler handles term management HTTP requests
type TermHandler struct {
	termService service.TermService
}

// NewTermHandler creates a new TermHandler
func NewTermHandler(termService service.TermService) *TermHandler {
	return &TermHandler{termService: termService}
}

// List retrieves terms of a taxonomy
// GET /api/v1/sites/:site_id/taxonomies/:taxonomy/terms
func (h *TermHandler) List(c *gin.Context) {
	var query dto.ListTermsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	query.SetDefaults()

	terms, total, err := h.termService.List(c.Request.Context(), c.Param("site_id"), c.Param("taxonomy"), query.Page, query.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(terms, query.Page, query.Limit, len(terms), total))
}

// GetByID retrieves a term by ID
// GET /api/v1/sites/:site_id/taxonomies/:taxonomy/terms/:id
func (h *TermHandler) GetByID(c *gin.Context) {
	term, err := h.termService.GetByID(c.Request.Context(), c.Param("site_id"), c.Param("taxonomy"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(term))
}

// Create creates a term in a taxonomy
// POST /api/v1/sites/:site_id/taxonomies/:taxonomy/terms
func (h *TermHandler) Create(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	term, err := h.termService.Create(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("taxonomy"), service.CreateTermInput{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
		ImageID:  req.ImageID,
		Meta:     req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(term))
}

// Update updates a term
// PUT /api/v1/sites/:site_id/taxonomies/:taxonomy/terms/:id
func (h *TermHandler) Update(c *gin.Context) {
	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	term, err := h.termService.Update(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("taxonomy"), c.Param("id"), service.UpdateTermInput{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
		ImageID:  req.ImageID,
		Meta:     req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(term))
}

// Delete removes a term
// DELETE /api/v1/sites/:site_id/taxonomies/:taxonomy/terms/:id
func (h *TermHandler) Delete(c *gin.Context) {
	if err := h.termService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("taxonomy"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Term deleted"}))
}
