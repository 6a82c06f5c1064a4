// Package router provides billing module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/playreply/playreply/internal/billing/handler"
	"github.com/playreply/playreply/internal/billing/repository"
	"github.com/playreply/playreply/internal/billing/service"
	"github.com/playreply/playreply/internal/config"
)

// RegisterRoutes registers billing module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.BillingConfig, logger *zap.SugaredLogger) {
	repo := repository.New(db)
	svc := service.New(repo, cfg, logger)
	h := handler.New(svc, logger)

	r.POST("/webhooks/billing", h.Webhook)
}
