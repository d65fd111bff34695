package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// AuthHandler handles authentication and impersonation HTTP requests
type AuthHandler struct {
	authService    service.AuthService
	accessTokenTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, accessTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, accessTokenTTL: accessTokenTTL}
}

// Login handles credential login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewSessionResponse(user, pair, false)))
}

// Refresh handles token refresh
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}))
}

// Logout revokes the current session's tokens
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p := principalFrom(c)
	if err := h.authService.Logout(c.Request.Context(), p, time.Now().Add(h.accessTokenTTL)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Logged out"}))
}

// Impersonate switches the session to another user
// POST /api/v1/auth/impersonate
func (h *AuthHandler) Impersonate(c *gin.Context) {
	var req dto.ImpersonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	target, pair, err := h.authService.Impersonate(c.Request.Context(), principalFrom(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewSessionResponse(target, pair, true)))
}

// SwitchBack restores the original actor's session
// POST /api/v1/auth/switch-back
func (h *AuthHandler) SwitchBack(c *gin.Context) {
	original, pair, err := h.authService.SwitchBack(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewSessionResponse(original, pair, false)))
}
