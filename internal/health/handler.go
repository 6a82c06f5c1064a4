// Package health provides the readiness endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/playreply/playreply/internal/database"
)

const checkTimeout = 5 * time.Second

// Handler reports service readiness. The service is considered healthy
// when the database answers a ping; the workflow engine is deliberately
// not probed, since its outages must not take the API down.
type Handler struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new health handler instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{db: db, logger: logger}
}

// Response represents the health check payload.
type Response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Check handles GET /health.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, Response{Status: "unhealthy", Database: "down"})
		return
	}

	c.JSON(http.StatusOK, Response{Status: "ok", Database: "up"})
}
