package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// MediaHandler handles media library HTTP requests
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// List retrieves the site's media records
// GET /api/v1/sites/:site_id/media
func (h *MediaHandler) List(c *gin.Context) {
	var query dto.ListMediaQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	query.SetDefaults()

	items, total, err := h.mediaService.List(c.Request.Context(), c.Param("site_id"), query.Page, query.Limit, query.MimeType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(items, query.Page, query.Limit, len(items), total))
}

// GetByID retrieves a media record by ID
// GET /api/v1/sites/:site_id/media/:id
func (h *MediaHandler) GetByID(c *gin.Context) {
	media, err := h.mediaService.GetByID(c.Request.Context(), c.Param("site_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(media))
}

// Create records an uploaded file
// POST /api/v1/sites/:site_id/media
func (h *MediaHandler) Create(c *gin.Context) {
	var req dto.CreateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	media, err := h.mediaService.Create(c.Request.Context(), principalFrom(c), c.Param("site_id"), service.CreateMediaInput{
		FileName:  req.FileName,
		Path:      req.Path,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
		Title:     req.Title,
		AltText:   req.AltText,
		Caption:   req.Caption,
		Meta:      req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(media))
}

// Update updates a media record's descriptive attributes
// PUT /api/v1/sites/:site_id/media/:id
func (h *MediaHandler) Update(c *gin.Context) {
	var req dto.UpdateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	media, err := h.mediaService.Update(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("id"), service.UpdateMediaInput{
		Title:   req.Title,
		AltText: req.AltText,
		Caption: req.Caption,
		Meta:    req.Meta,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(media))
}

// Delete removes a media record
// DELETE /api/v1/sites/:site_id/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.mediaService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Media deleted"}))
}
