// Package router provides icon module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playreply/playreply/internal/config"
	"github.com/playreply/playreply/internal/icon/cache"
	"github.com/playreply/playreply/internal/icon/handler"
	"github.com/playreply/playreply/internal/icon/service"
)

// RegisterRoutes registers icon module routes.
func RegisterRoutes(r *gin.Engine, cfg config.RedisConfig, logger *zap.SugaredLogger) {
	iconCache := cache.New(cfg, logger)
	svc := service.New(iconCache, cfg, logger)
	h := handler.New(svc, logger)

	r.GET("/icon", h.Lookup)
}
