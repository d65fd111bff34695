package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/pkg/database"
	"github.com/grandslambert/backend-cms/pkg/response"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db        *database.PostgresDB
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *database.PostgresDB) *HealthHandler {
	return &HealthHandler{db: db, startedAt: time.Now()}
}

// Health returns liveness
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	}))
}

// Ready returns readiness, checking downstream dependencies
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Error("NOT_READY", "database unreachable"))
			return
		}
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"status": "ready"}))
}
