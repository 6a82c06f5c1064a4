// Package router provides app module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/playreply/playreply/internal/app/handler"
	"github.com/playreply/playreply/internal/app/repository"
	"github.com/playreply/playreply/internal/app/service"
	"github.com/playreply/playreply/internal/workflow"
)

// RegisterRoutes registers app module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, trigger workflow.Trigger, logger *zap.SugaredLogger) service.Service {
	repo := repository.New(db)
	svc := service.New(repo, trigger, logger)
	h := handler.New(svc, logger)

	r.POST("/apps", h.CreateApp)
	r.GET("/apps", h.ListApps)
	r.POST("/apps/sync", h.SyncAll)
	r.GET("/apps/:id", h.GetApp)
	r.DELETE("/apps/:id", h.DeleteApp)
	r.GET("/apps/:id/settings", h.GetSettings)
	r.PUT("/apps/:id/settings", h.UpdateSettings)
	r.POST("/apps/:id/sync", h.SyncApp)
	r.POST("/apps/:id/import", h.ImportCSV)
	r.POST("/apps/:id/historical", h.FetchHistorical)
	r.PUT("/users/ios-credentials", h.SaveIOSCredentials)
	r.GET("/users/ios-credentials", h.GetIOSCredentials)

	return svc
}
