package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/middleware"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create handles user creation
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	// Only an existing super admin may mint another one.
	if req.SuperAdmin && !middleware.IsSuperAdmin(c) {
		c.JSON(http.StatusForbidden, response.Forbidden("only a super admin can grant super admin"))
		return
	}

	user, err := h.userService.Create(c.Request.Context(), principalFrom(c), service.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		SuperAdmin:  req.SuperAdmin,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.NewUserResponse(user)))
}

// GetByID handles retrieving a user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewUserResponse(user)))
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *UserHandler) Me(c *gin.Context) {
	p := principalFrom(c)
	user, err := h.userService.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{
		"user":          dto.NewUserResponse(user),
		"impersonating": p.Impersonating(),
	}))
}

// List handles retrieving users with pagination
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var query dto.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	query.SetDefaults()

	users, total, err := h.userService.List(c.Request.Context(), query.Page, query.Limit, query.IsActive, query.Search)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(dto.NewUserResponses(users), query.Page, query.Limit, len(users), int64(total)))
}

// Update handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), principalFrom(c), c.Param("id"), service.UpdateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.NewUserResponse(user)))
}

// Delete handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), principalFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "User deleted"}))
}
