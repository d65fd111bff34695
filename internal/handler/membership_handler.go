package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// MembershipHandler handles site membership HTTP requests
type MembershipHandler struct {
	membershipService service.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(membershipService service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// Add links a user to the site with a role
// POST /api/v1/sites/:site_id/members
func (h *MembershipHandler) Add(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	m, err := h.membershipService.Add(c.Request.Context(), principalFrom(c), c.Param("site_id"), req.UserID, req.RoleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.NewMembershipResponse(m)))
}

// List retrieves all memberships on the site
// GET /api/v1/sites/:site_id/members
func (h *MembershipHandler) List(c *gin.Context) {
	memberships, err := h.membershipService.ListByTenant(c.Request.Context(), c.Param("site_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewMembershipResponses(memberships)))
}

// ListMine retrieves the authenticated user's memberships across sites
// GET /api/v1/me/sites
func (h *MembershipHandler) ListMine(c *gin.Context) {
	memberships, err := h.membershipService.ListByUser(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewMembershipResponses(memberships)))
}

// ChangeRole updates a member's role on the site
// PUT /api/v1/sites/:site_id/members/:user_id
func (h *MembershipHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	if err := h.membershipService.ChangeRole(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("user_id"), req.RoleID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Role changed"}))
}

// Remove deletes a membership from the site
// DELETE /api/v1/sites/:site_id/members/:user_id
func (h *MembershipHandler) Remove(c *gin.Context) {
	if err := h.membershipService.Remove(c.Request.Context(), principalFrom(c), c.Param("site_id"), c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Member removed"}))
}
