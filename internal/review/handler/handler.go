// Package handler exposes the review lifecycle over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/review/model"
	"github.com/playreply/playreply/internal/review/service"
	"github.com/playreply/playreply/internal/workflow"
)

// Handler handles review lifecycle HTTP requests.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new review handler.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// List handles GET /apps/:id/reviews.
func (h *Handler) List(c *gin.Context) {
	appID := c.Param("id")

	var filter model.Filter
	filter.Status = c.Query("status")
	filter.Category = c.Query("category")
	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "rating must be an integer")
			return
		}
		filter.Rating = rating
	}

	page := model.Page{Offset: 0, Limit: model.DefaultPageLimit}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "offset must be an integer")
			return
		}
		page.Offset = offset
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be an integer")
			return
		}
		page.Limit = limit
	}

	resp, err := h.service.ListReviews(c.Request.Context(), appID, filter, page)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Generate handles POST /reviews/:id/generate.
func (h *Handler) Generate(c *gin.Context) {
	reply, err := h.service.GenerateReply(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Regenerate handles POST /reviews/:id/regenerate.
func (h *Handler) Regenerate(c *gin.Context) {
	reply, err := h.service.RegenerateReply(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Approve handles POST /reviews/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	var req model.ApproveReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	reply, err := h.service.ApproveReply(c.Request.Context(), c.Param("id"), req.FinalText)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Send handles POST /reviews/:id/send.
func (h *Handler) Send(c *gin.Context) {
	reply, err := h.service.SendReply(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Ignore handles POST /reviews/:id/ignore.
func (h *Handler) Ignore(c *gin.Context) {
	if err := h.service.IgnoreReview(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkApprove handles POST /reviews/bulk/approve.
func (h *Handler) BulkApprove(c *gin.Context) {
	h.bulk(c, h.service.BulkApprove)
}

// BulkIgnore handles POST /reviews/bulk/ignore.
func (h *Handler) BulkIgnore(c *gin.Context) {
	h.bulk(c, h.service.BulkIgnore)
}

// BulkSend handles POST /reviews/bulk/send.
func (h *Handler) BulkSend(c *gin.Context) {
	h.bulk(c, h.service.BulkSend)
}

func (h *Handler) bulk(
	c *gin.Context,
	op func(ctx context.Context, ids []string) (*model.BulkResult, error),
) {
	var req model.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := op(c.Request.Context(), req.ReviewIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondError maps service errors to HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrReviewNotFound):
		errorResponse(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "review not found")
	case errors.Is(err, appModel.ErrAppNotFound):
		errorResponse(c, http.StatusNotFound, "APP_NOT_FOUND", "app not found")
	case errors.Is(err, model.ErrReplyNotFound):
		errorResponse(c, http.StatusNotFound, "REPLY_NOT_FOUND", "no reply exists for this review")
	case errors.Is(err, model.ErrReplyNotApproved):
		errorResponse(c, http.StatusConflict, "REPLY_NOT_APPROVED", "reply must be approved before sending")
	case errors.Is(err, model.ErrIllegalTransition):
		errorResponse(c, http.StatusConflict, "ILLEGAL_TRANSITION", "operation not allowed in the review's current state")
	case errors.Is(err, model.ErrEmptyFinalText):
		errorResponse(c, http.StatusBadRequest, "EMPTY_FINAL_TEXT", "final text must not be empty")
	case errors.Is(err, model.ErrInvalidPage):
		errorResponse(c, http.StatusBadRequest, "INVALID_PAGE", "invalid pagination parameters")
	case errors.Is(err, model.ErrEmptySelection):
		errorResponse(c, http.StatusBadRequest, "EMPTY_SELECTION", "review_ids must not be empty")
	case errors.Is(err, model.ErrGenerationTimeout):
		errorResponse(c, http.StatusGatewayTimeout, "GENERATION_TIMEOUT", "draft generation did not complete in time")
	case errors.Is(err, workflow.ErrTriggerFailed):
		errorResponse(c, http.StatusBadGateway, "WORKFLOW_ERROR", "workflow engine rejected the request")
	default:
		h.logger.Errorw("review operation failed", "path", c.FullPath(), "error", err)
		errorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
