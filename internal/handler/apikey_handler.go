package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// APIKeyHandler handles the authenticated user's API key HTTP requests
type APIKeyHandler struct {
	apiKeyService service.APIKeyService
}

// NewAPIKeyHandler creates a new APIKeyHandler
func NewAPIKeyHandler(apiKeyService service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService: apiKeyService}
}

// Create issues a new key for the authenticated user
// POST /api/v1/me/api-keys
func (h *APIKeyHandler) Create(c *gin.Context) {
	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	p := principalFrom(c)
	key, secret, err := h.apiKeyService.Create(c.Request.Context(), p, service.CreateAPIKeyInput{
		UserID:      p.UserID,
		Name:        req.Name,
		Permissions: req.Permissions,
		TenantID:    req.TenantID,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.APIKeyCreatedResponse{
		ID:          key.ID,
		Name:        key.Name,
		Prefix:      key.Prefix,
		Secret:      secret,
		Permissions: key.Permissions,
		TenantID:    key.TenantID,
		ExpiresAt:   key.ExpiresAt,
	}))
}

// List retrieves the authenticated user's keys
// GET /api/v1/me/api-keys
func (h *APIKeyHandler) List(c *gin.Context) {
	keys, err := h.apiKeyService.ListByUser(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(keys))
}

// Revoke deactivates a key without deleting its record
// POST /api/v1/me/api-keys/:id/revoke
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	p := principalFrom(c)
	if err := h.apiKeyService.Revoke(c.Request.Context(), p, p.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "API key revoked"}))
}

// Delete removes a key record
// DELETE /api/v1/me/api-keys/:id
func (h *APIKeyHandler) Delete(c *gin.Context) {
	p := principalFrom(c)
	if err := h.apiKeyService.Delete(c.Request.Context(), p, p.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "API key deleted"}))
}
