package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/dto"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// ActivityHandler handles activity log HTTP requests. The log itself is
// append-only; these routes only read it.
type ActivityHandler struct {
	activityService service.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List retrieves activity entries newest-first
// GET /api/v1/activity
func (h *ActivityHandler) List(c *gin.Context) {
	var query dto.ListActivityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	query.SetDefaults()

	filter := repository.ActivityFilter{
		ActorID:    query.ActorID,
		Action:     query.Action,
		ObjectType: query.ObjectType,
	}
	if query.TenantID != "" {
		filter.TenantID = &query.TenantID
	}

	entries, total, err := h.activityService.List(c.Request.Context(), query.Page, query.Limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(entries, query.Page, query.Limit, len(entries), int64(total)))
}

// ListForSite retrieves activity scoped to the routed site
// GET /api/v1/sites/:site_id/activity
func (h *ActivityHandler) ListForSite(c *gin.Context) {
	var query dto.ListActivityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	query.SetDefaults()

	siteID := c.Param("site_id")
	filter := repository.ActivityFilter{
		TenantID:   &siteID,
		ActorID:    query.ActorID,
		Action:     query.Action,
		ObjectType: query.ObjectType,
	}

	entries, total, err := h.activityService.List(c.Request.Context(), query.Page, query.Limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(entries, query.Page, query.Limit, len(entries), int64(total)))
}

// GetByID retrieves one activity entry with its change diff
// GET /api/v1/activity/:id
func (h *ActivityHandler) GetByID(c *gin.Context) {
	entry, err := h.activityService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(entry))
}
