// Package handler provides HTTP handlers for app endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/app/service"
	"github.com/playreply/playreply/internal/workflow"
)

// userHeader carries the authenticated user id, injected by the edge proxy.
const userHeader = "X-User-ID"

// Handler handles HTTP requests for app endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new app handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func ownerID(c *gin.Context) (string, bool) {
	owner := c.GetHeader(userHeader)
	if owner == "" {
		errorResponse(c, "MISSING_USER", "X-User-ID header is required", http.StatusBadRequest)
		return "", false
	}
	return owner, true
}

// CreateApp handles POST /apps.
func (h *Handler) CreateApp(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var req appModel.CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	app, err := h.service.CreateApp(c.Request.Context(), owner, &req)
	if err != nil {
		if errors.Is(err, appModel.ErrInvalidPlatform) {
			errorResponse(c, "INVALID_PLATFORM", err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, appModel.ErrAppExists) {
			errorResponse(c, "APP_EXISTS", "app already connected", http.StatusConflict)
			return
		}
		h.logger.Errorw("create app failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"app": app})
}

// ListApps handles GET /apps.
func (h *Handler) ListApps(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	apps, err := h.service.ListApps(c.Request.Context(), owner)
	if err != nil {
		h.logger.Errorw("list apps failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"apps": apps, "total": len(apps)})
}

// GetApp handles GET /apps/:id.
func (h *Handler) GetApp(c *gin.Context) {
	app, err := h.service.GetApp(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) {
			notFoundResponse(c, "app not found")
			return
		}
		h.logger.Errorw("get app failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"app": app})
}

// DeleteApp handles DELETE /apps/:id.
func (h *Handler) DeleteApp(c *gin.Context) {
	err := h.service.DeleteApp(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) {
			notFoundResponse(c, "app not found")
			return
		}
		h.logger.Errorw("delete app failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSettings handles GET /apps/:id/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) || errors.Is(err, appModel.ErrSettingsNotFound) {
			notFoundResponse(c, "app not found")
			return
		}
		h.logger.Errorw("get settings failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings handles PUT /apps/:id/settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch appModel.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), c.Param("id"), patch.ToUpdateRequest())
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) || errors.Is(err, appModel.ErrSettingsNotFound) {
			notFoundResponse(c, "app not found")
			return
		}
		if errors.Is(err, appModel.ErrInvalidRating) || errors.Is(err, appModel.ErrInvalidInterval) {
			errorResponse(c, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Errorw("update settings failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// SaveIOSCredentials handles PUT /users/ios-credentials.
func (h *Handler) SaveIOSCredentials(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var req appModel.SaveIOSCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SaveIOSCredentials(c.Request.Context(), owner, &req); err != nil {
		h.logger.Errorw("save ios credentials failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetIOSCredentials handles GET /users/ios-credentials.
func (h *Handler) GetIOSCredentials(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	summary, err := h.service.GetIOSCredentialsSummary(c.Request.Context(), owner)
	if err != nil {
		if errors.Is(err, appModel.ErrCredentialsNotFound) {
			notFoundResponse(c, "ios credentials not found")
			return
		}
		h.logger.Errorw("get ios credentials failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credentials": summary})
}

// SyncApp handles POST /apps/:id/sync.
func (h *Handler) SyncApp(c *gin.Context) {
	err := h.service.SyncApp(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) {
			notFoundResponse(c, "app not found")
			return
		}
		if errors.Is(err, appModel.ErrCredentialsRequired) {
			errorResponse(c, "CREDENTIALS_REQUIRED", "ios credentials required", http.StatusConflict)
			return
		}
		if errors.Is(err, workflow.ErrTriggerFailed) {
			errorResponse(c, "SYNC_FAILED", "sync trigger failed", http.StatusBadGateway)
			return
		}
		h.logger.Errorw("sync app failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sync_triggered"})
}

// SyncAll handles POST /apps/sync.
func (h *Handler) SyncAll(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	result, err := h.service.SyncAll(c.Request.Context(), owner)
	if err != nil {
		h.logger.Errorw("sync all failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"result": result})
}

// ImportCSV handles POST /apps/:id/import.
func (h *Handler) ImportCSV(c *gin.Context) {
	var req appModel.ImportCSVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.ImportCSV(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) {
			notFoundResponse(c, "app not found")
			return
		}
		if errors.Is(err, workflow.ErrTriggerFailed) {
			errorResponse(c, "IMPORT_FAILED", "import trigger failed", http.StatusBadGateway)
			return
		}
		h.logger.Errorw("csv import failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "import_triggered"})
}

// FetchHistorical handles POST /apps/:id/historical.
func (h *Handler) FetchHistorical(c *gin.Context) {
	var req appModel.HistoricalFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.FetchHistorical(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, appModel.ErrAppNotFound) {
			notFoundResponse(c, "app not found")
			return
		}
		if errors.Is(err, workflow.ErrTriggerFailed) {
			errorResponse(c, "FETCH_FAILED", "historical fetch trigger failed", http.StatusBadGateway)
			return
		}
		h.logger.Errorw("historical fetch failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "fetch_triggered"})
}
