// Package router provides review module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/playreply/playreply/internal/review/handler"
	"github.com/playreply/playreply/internal/review/repository"
	"github.com/playreply/playreply/internal/review/service"
	"github.com/playreply/playreply/internal/workflow"
	"github.com/playreply/playreply/pkg/retry"
)

// RegisterRoutes registers review module routes. settings is the app
// module's settings lookup, pollCfg bounds post-trigger draft polling.
func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	trigger workflow.Trigger,
	settings service.SettingsSource,
	pollCfg retry.Config,
	logger *zap.SugaredLogger,
) service.Service {
	repo := repository.New(db)
	svc := service.New(repo, trigger, settings, pollCfg, logger)
	h := handler.New(svc, logger)

	r.GET("/apps/:id/reviews", h.List)
	r.POST("/reviews/bulk/approve", h.BulkApprove)
	r.POST("/reviews/bulk/ignore", h.BulkIgnore)
	r.POST("/reviews/bulk/send", h.BulkSend)
	r.POST("/reviews/:id/generate", h.Generate)
	r.POST("/reviews/:id/regenerate", h.Regenerate)
	r.POST("/reviews/:id/approve", h.Approve)
	r.POST("/reviews/:id/send", h.Send)
	r.POST("/reviews/:id/ignore", h.Ignore)

	return svc
}
