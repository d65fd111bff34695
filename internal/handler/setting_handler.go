package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// SettingHandler handles site settings HTTP requests
type SettingHandler struct {
	settingService service.SettingService
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settingService service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// List retrieves the site's settings
// GET /api/v1/sites/:site_id/settings
func (h *SettingHandler) List(c *gin.Context) {
	autoloadOnly := c.Query("autoload") == "true"
	settings, err := h.settingService.List(c.Request.Context(), c.Param("site_id"), autoloadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(settings))
}

// Get retrieves a setting by key
// GET /api/v1/sites/:site_id/settings/:key
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settingService.Get(c.Request.Context(), c.Param("site_id"), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(setting))
}

// Set creates or replaces a setting value by key
// PUT /api/v1/sites/:site_id/settings/:key
func (h *SettingHandler) Set(c *gin.Context) {
	var req dto.SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	setting, err := h.settingService.Set(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("key"), req.Value, req.Autoload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(setting))
}

// Delete removes a setting by key
// DELETE /api/v1/sites/:site_id/settings/:key
func (h *SettingHandler) Delete(c *gin.Context) {
	if err := h.settingService.Delete(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Setting deleted"}))
}
