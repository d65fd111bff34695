package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/apperr"
	"github.com/grandslambert/backend-cms/pkg/middleware"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// principalFrom rebuilds the authenticated principal from the request
// context. The tenant comes from the route, not the token, so one session
// works across every site the user can access. API key sessions carry the
// key's own permission map and site binding.
func principalFrom(c *gin.Context) service.Principal {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetRole(c)
	tokenID, _ := middleware.GetTokenID(c)
	impersonatorID, _ := middleware.GetImpersonatorID(c)
	var keyPerms map[string]bool
	if v, ok := c.Get(contextKeyAPIKeyPermissions); ok {
		keyPerms, _ = v.(map[string]bool)
	}
	return service.Principal{
		UserID:         userID,
		Role:           role,
		TenantID:       c.Param("site_id"),
		SuperAdmin:     middleware.IsSuperAdmin(c),
		ImpersonatorID: impersonatorID,
		TokenID:        tokenID,
		KeyPermissions: keyPerms,
		KeyTenantID:    c.GetString(contextKeyAPIKeyTenant),
	}
}

// respondError renders a service error through the shared envelope. Untyped
// errors collapse to an opaque 500; their detail stays server-side.
func respondError(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		c.JSON(response.HTTPStatus(e.Kind), response.FromAppError(e))
		return
	}
	c.JSON(http.StatusInternalServerError, response.InternalError(""))
}
