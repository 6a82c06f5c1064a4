// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	appRepository "github.com/playreply/playreply/internal/app/repository"
	appRouter "github.com/playreply/playreply/internal/app/router"
	billingRouter "github.com/playreply/playreply/internal/billing/router"
	"github.com/playreply/playreply/internal/config"
	"github.com/playreply/playreply/internal/database"
	"github.com/playreply/playreply/internal/health"
	iconRouter "github.com/playreply/playreply/internal/icon/router"
	"github.com/playreply/playreply/internal/metrics"
	"github.com/playreply/playreply/internal/middleware"
	reviewRouter "github.com/playreply/playreply/internal/review/router"
	"github.com/playreply/playreply/internal/scheduler"
	statisticsRouter "github.com/playreply/playreply/internal/statistics/router"
	"github.com/playreply/playreply/internal/workflow"
	"github.com/playreply/playreply/pkg/logger"
	"github.com/playreply/playreply/pkg/retry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx)
	cancel()
	if err != nil {
		zapLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			zapLogger.Errorw("failed to close database", "error", closeErr)
		}
	}()

	if err := database.SetupConnectionPool(db, database.LoadPoolConfigFromEnv()); err != nil {
		zapLogger.Fatalw("failed to configure connection pool", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		zapLogger.Fatalw("failed to migrate schema", "error", err)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Recovery(zapLogger))
	r.Use(middleware.Logger(zapLogger))
	r.Use(metrics.Middleware())

	trigger := workflow.NewClient(cfg.Workflow, zapLogger)
	pollCfg := retry.FixedConfig(cfg.Lifecycle.GeneratePollAttempts, cfg.Lifecycle.GeneratePollInterval)

	appSvc := appRouter.RegisterRoutes(r, db, trigger, zapLogger)
	reviewSvc := reviewRouter.RegisterRoutes(r, db, trigger, appRepository.New(db), pollCfg, zapLogger)
	statisticsRouter.RegisterRoutes(r, db, zapLogger)
	billingRouter.RegisterRoutes(r, db, cfg.Billing, zapLogger)
	iconRouter.RegisterRoutes(r, cfg.Redis, zapLogger)

	healthHandler := health.New(db, zapLogger)
	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", metrics.Handler())

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(appSvc, reviewSvc, cfg.Scheduler, zapLogger)
		if err != nil {
			zapLogger.Fatalw("failed to create scheduler", "error", err)
		}
		sched.Start()
	}

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLogger.Infow("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Infow("server shutting down")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatalw("forced shutdown", "error", err)
	}

	zapLogger.Infow("server stopped")
}
