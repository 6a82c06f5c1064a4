// Package handler provides the icon lookup endpoint.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/icon/model"
	"github.com/playreply/playreply/internal/icon/service"
)

// Handler handles icon lookup HTTP requests.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new icon handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Lookup handles GET /icon?packageName=...&platform=...
func (h *Handler) Lookup(c *gin.Context) {
	resp, err := h.service.Lookup(
		c.Request.Context(),
		c.Query("packageName"),
		c.Query("platform"),
	)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingPackageName), errors.Is(err, model.ErrUnsupportedPlatform):
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		default:
			h.logger.Errorw("icon lookup failed", "error", err)
			errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
