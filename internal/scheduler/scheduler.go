// Package scheduler runs the server-side background sweeps: periodic review
// sync for apps whose interval has elapsed, and the auto-reply/auto-send
// pass. These used to depend on an open dashboard tab; here they are
// process-owned and survive without any client attached.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	appService "github.com/playreply/playreply/internal/app/service"
	"github.com/playreply/playreply/internal/config"
	reviewService "github.com/playreply/playreply/internal/review/service"
)

// sweepTimeout bounds one full pass across all apps.
const sweepTimeout = 5 * time.Minute

// Scheduler owns the cron runner and the two sweep jobs.
type Scheduler struct {
	cron    *cron.Cron
	apps    appService.Service
	reviews reviewService.Service
	cfg     config.SchedulerConfig
	logger  *zap.SugaredLogger
}

// New creates a new scheduler. Jobs are registered but not started.
func New(
	apps appService.Service,
	reviews reviewService.Service,
	cfg config.SchedulerConfig,
	logger *zap.SugaredLogger,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		apps:    apps,
		reviews: reviews,
		cfg:     cfg,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc("@every "+cfg.SyncInterval.String(), s.syncSweep); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc("@every "+cfg.AutoProcessInterval.String(), s.autoProcessSweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running the sweeps in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infow("scheduler started",
		"sync_interval", s.cfg.SyncInterval,
		"auto_process_interval", s.cfg.AutoProcessInterval,
	)
}

// Stop halts the runner and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Infow("scheduler stopped")
}

// syncSweep triggers a review sync for every app whose per-app interval has
// elapsed since its last sync.
func (s *Scheduler) syncSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	apps, err := s.apps.ListAllApps(ctx)
	if err != nil {
		s.logger.Errorw("sync sweep failed to list apps", "error", err)
		return
	}

	triggered := 0
	for i := range apps {
		app := &apps[i]
		due, err := s.syncDue(ctx, app)
		if err != nil {
			s.logger.Warnw("sync sweep settings lookup failed",
				"app_id", app.ID, "error", err)
			continue
		}
		if !due {
			continue
		}

		if err := s.apps.SyncApp(ctx, app.ID); err != nil {
			s.logger.Warnw("sync sweep trigger failed", "app_id", app.ID, "error", err)
			continue
		}
		triggered++
	}

	s.logger.Infow("sync sweep finished", "apps", len(apps), "triggered", triggered)
}

func (s *Scheduler) syncDue(ctx context.Context, app *appModel.App) (bool, error) {
	settings, err := s.apps.GetSettings(ctx, app.ID)
	if err != nil {
		return false, err
	}
	if settings.LastSyncedAt == nil {
		return true, nil
	}
	interval := time.Duration(settings.SyncIntervalMinutes) * time.Minute
	return time.Since(*settings.LastSyncedAt) >= interval, nil
}

// autoProcessSweep runs the auto-reply/auto-send pass over every app.
func (s *Scheduler) autoProcessSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	apps, err := s.apps.ListAllApps(ctx)
	if err != nil {
		s.logger.Errorw("auto-process sweep failed to list apps", "error", err)
		return
	}

	for i := range apps {
		app := &apps[i]
		result, err := s.reviews.AutoProcess(ctx, app.ID)
		if err != nil {
			s.logger.Warnw("auto-process failed", "app_id", app.ID, "error", err)
			continue
		}
		if result.GenerationsTriggered+result.Reconciled+result.AutoSent+result.Failed > 0 {
			s.logger.Infow("auto-process pass",
				"app_id", app.ID,
				"generations", result.GenerationsTriggered,
				"reconciled", result.Reconciled,
				"auto_sent", result.AutoSent,
				"failed", result.Failed,
			)
		}
	}
}
