// Package handler provides the inbound billing webhook endpoint.
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/billing/model"
	"github.com/playreply/playreply/internal/billing/service"
)

// signatureHeader is the billing provider's signature header name.
const signatureHeader = "paddle-signature"

// Handler handles billing webhook HTTP requests.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new billing handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Webhook handles POST /webhooks/billing. The body must be read raw: the
// signature covers the exact bytes on the wire.
func (h *Handler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "failed to read request body")
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), rawBody, c.GetHeader(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingSignature), errors.Is(err, model.ErrInvalidSignature):
			h.logger.Warnw("rejected billing webhook", "error", err)
			errorResponse(c, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed")
		case errors.Is(err, model.ErrMalformedEvent):
			errorResponse(c, http.StatusBadRequest, "MALFORMED_EVENT", "event body is not a valid billing event")
		case errors.Is(err, model.ErrOrganizationNotFound):
			errorResponse(c, http.StatusNotFound, "ORGANIZATION_NOT_FOUND", "no organization matches the event")
		default:
			h.logger.Errorw("billing webhook processing failed", "error", err)
			errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
