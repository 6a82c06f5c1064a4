// Package handler provides HTTP handlers for statistics endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/statistics/service"
)

// Handler handles HTTP requests for statistics endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new statistics handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetAppStatistics handles GET /apps/:id/stats.
func (h *Handler) GetAppStatistics(c *gin.Context) {
	resp, err := h.service.GetAppStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) {
			errorResponse(c, http.StatusNotFound, "APP_NOT_FOUND", "app not found")
			return
		}
		h.logger.Errorw("error getting app statistics", "error", err)
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	c.JSON(http.StatusOK, resp)
}
