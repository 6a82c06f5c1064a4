// Package service provides business logic layer for the app module.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appModel "github.com/playreply/playreply/internal/app/model"
	"github.com/playreply/playreply/internal/app/repository"
	"github.com/playreply/playreply/internal/workflow"
)

// Service defines the interface for app business logic operations.
type Service interface {
	// CreateApp connects a store listing and creates its default settings.
	CreateApp(ctx context.Context, ownerID string, req *appModel.CreateAppRequest) (*appModel.App, error)

	// GetApp returns a single app by id.
	GetApp(ctx context.Context, appID string) (*appModel.App, error)

	// ListApps returns all apps connected by an owner.
	ListApps(ctx context.Context, ownerID string) ([]appModel.App, error)

	// ListAllApps returns every connected app across all owners.
	ListAllApps(ctx context.Context) ([]appModel.App, error)

	// DeleteApp disconnects an app, cascading to settings, reviews and replies.
	DeleteApp(ctx context.Context, appID string) error

	// GetSettings returns the automation settings for an app.
	GetSettings(ctx context.Context, appID string) (*appModel.AppSettings, error)

	// UpdateSettings merges the patch onto current settings and saves.
	UpdateSettings(ctx context.Context, appID string, req *appModel.UpdateSettingsRequest) (*appModel.AppSettings, error)

	// SaveIOSCredentials upserts the user's App Store Connect credentials.
	SaveIOSCredentials(ctx context.Context, userID string, req *appModel.SaveIOSCredentialsRequest) error

	// GetIOSCredentialsSummary returns the credential view with the private key stripped.
	GetIOSCredentialsSummary(ctx context.Context, userID string) (*appModel.IOSCredentialsSummary, error)

	// SyncApp triggers a review sync for one app.
	SyncApp(ctx context.Context, appID string) error

	// SyncAll triggers syncs for all of an owner's apps concurrently.
	SyncAll(ctx context.Context, ownerID string) (*appModel.SyncResult, error)

	// ImportCSV triggers a CSV review import for an app.
	ImportCSV(ctx context.Context, appID string, req *appModel.ImportCSVRequest) error

	// FetchHistorical triggers a historical review backfill for an app.
	FetchHistorical(ctx context.Context, appID string, req *appModel.HistoricalFetchRequest) error
}

type service struct {
	repo    repository.Repository
	trigger workflow.Trigger
	logger  *zap.SugaredLogger
}

// New creates a new app service instance.
func New(repo repository.Repository, trigger workflow.Trigger, logger *zap.SugaredLogger) Service {
	return &service{
		repo:    repo,
		trigger: trigger,
		logger:  logger,
	}
}

// CreateApp connects a store listing and creates its default settings.
func (s *service) CreateApp(
	ctx context.Context,
	ownerID string,
	req *appModel.CreateAppRequest,
) (*appModel.App, error) {
	if !appModel.ValidPlatform(req.Platform) {
		return nil, appModel.ErrInvalidPlatform
	}

	app := &appModel.App{
		ID:          uuid.NewString(),
		PackageName: req.PackageName,
		Platform:    req.Platform,
		Name:        req.Name,
		IconURL:     req.IconURL,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateWithSettings(ctx, app, appModel.DefaultSettings(app.ID)); err != nil {
		return nil, err
	}

	s.logger.Infow("app connected",
		"app_id", app.ID,
		"package_name", app.PackageName,
		"platform", app.Platform,
	)
	return app, nil
}

// GetApp returns a single app by id.
func (s *service) GetApp(ctx context.Context, appID string) (*appModel.App, error) {
	return s.repo.GetByID(ctx, appID)
}

// ListApps returns all apps connected by an owner.
func (s *service) ListApps(ctx context.Context, ownerID string) ([]appModel.App, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListAllApps returns every connected app across all owners.
func (s *service) ListAllApps(ctx context.Context) ([]appModel.App, error) {
	return s.repo.ListAll(ctx)
}

// DeleteApp disconnects an app, cascading to settings, reviews and replies.
func (s *service) DeleteApp(ctx context.Context, appID string) error {
	if err := s.repo.Delete(ctx, appID); err != nil {
		return err
	}
	s.logger.Infow("app disconnected", "app_id", appID)
	return nil
}

// GetSettings returns the automation settings for an app.
func (s *service) GetSettings(ctx context.Context, appID string) (*appModel.AppSettings, error) {
	if _, err := s.repo.GetByID(ctx, appID); err != nil {
		return nil, err
	}
	return s.repo.GetSettings(ctx, appID)
}

// UpdateSettings merges the patch onto current settings and saves. Absent
// fields keep their current values; rating thresholds and intervals are
// validated before the write.
func (s *service) UpdateSettings(
	ctx context.Context,
	appID string,
	req *appModel.UpdateSettingsRequest,
) (*appModel.AppSettings, error) {
	if _, err := s.repo.GetByID(ctx, appID); err != nil {
		return nil, err
	}

	settings, err := s.repo.GetSettings(ctx, appID)
	if err != nil {
		return nil, err
	}

	if req.AutoReplyEnabled != nil {
		settings.AutoReplyEnabled = *req.AutoReplyEnabled
	}
	if req.AutoReplyMinRating != nil {
		if !validRating(*req.AutoReplyMinRating) {
			return nil, appModel.ErrInvalidRating
		}
		settings.AutoReplyMinRating = *req.AutoReplyMinRating
	}
	if req.AutoApproveMinRating != nil {
		if *req.AutoApproveMinRating != nil && !validRating(**req.AutoApproveMinRating) {
			return nil, appModel.ErrInvalidRating
		}
		settings.AutoApproveMinRating = *req.AutoApproveMinRating
	}
	if req.LanguageMode != nil {
		settings.LanguageMode = *req.LanguageMode
	}
	if req.SyncIntervalMinutes != nil {
		if *req.SyncIntervalMinutes < 1 {
			return nil, appModel.ErrInvalidInterval
		}
		settings.SyncIntervalMinutes = *req.SyncIntervalMinutes
	}
	if req.AutoSendIntervalMin != nil {
		if *req.AutoSendIntervalMin < 1 {
			return nil, appModel.ErrInvalidInterval
		}
		settings.AutoSendIntervalMin = *req.AutoSendIntervalMin
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Infow("app settings saved", "app_id", appID)
	return settings, nil
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// SaveIOSCredentials upserts the user's App Store Connect credentials.
func (s *service) SaveIOSCredentials(
	ctx context.Context,
	userID string,
	req *appModel.SaveIOSCredentialsRequest,
) error {
	creds := &appModel.IOSCredentials{
		UserID:     userID,
		IssuerID:   req.IssuerID,
		KeyID:      req.KeyID,
		PrivateKey: req.PrivateKey,
	}
	if err := s.repo.UpsertIOSCredentials(ctx, creds); err != nil {
		return err
	}

	s.logger.Infow("ios credentials saved", "user_id", userID, "key_id", req.KeyID)
	return nil
}

// GetIOSCredentialsSummary returns the credential view with the private key stripped.
func (s *service) GetIOSCredentialsSummary(
	ctx context.Context,
	userID string,
) (*appModel.IOSCredentialsSummary, error) {
	creds, err := s.repo.GetIOSCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &appModel.IOSCredentialsSummary{
		IssuerID: creds.IssuerID,
		KeyID:    creds.KeyID,
		HasKey:   creds.PrivateKey != "",
	}, nil
}

// SyncApp triggers a review sync for one app. iOS apps require stored
// credentials for the owner; without them the trigger is refused.
func (s *service) SyncApp(ctx context.Context, appID string) error {
	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return err
	}

	if err := s.dispatchSync(ctx, app); err != nil {
		return err
	}

	if err := s.repo.TouchLastSynced(ctx, appID, time.Now()); err != nil {
		s.logger.Warnw("failed to record sync time", "app_id", appID, "error", err)
	}
	return nil
}

func (s *service) dispatchSync(ctx context.Context, app *appModel.App) error {
	if app.Platform == appModel.PlatformIOS {
		if _, err := s.repo.GetIOSCredentials(ctx, app.OwnerID); err != nil {
			if errors.Is(err, appModel.ErrCredentialsNotFound) {
				return appModel.ErrCredentialsRequired
			}
			return err
		}
		return s.trigger.FetchIOSReviews(ctx, app.ID, app.PackageName)
	}
	return s.trigger.FetchReviews(ctx, app.ID, app.PackageName)
}

// SyncAll triggers syncs for all of an owner's apps concurrently, joined with
// a wait-for-all barrier. Failures among siblings do not cancel the rest; iOS
// apps without credentials are counted as skipped.
func (s *service) SyncAll(ctx context.Context, ownerID string) (*appModel.SyncResult, error) {
	apps, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result appModel.SyncResult
	)

	for i := range apps {
		app := apps[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.dispatchSync(ctx, &app)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Triggered++
			case errors.Is(err, appModel.ErrCredentialsRequired):
				result.Skipped++
			default:
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", app.ID, err))
			}
		}()
	}

	wg.Wait()

	now := time.Now()
	for i := range apps {
		if err := s.repo.TouchLastSynced(ctx, apps[i].ID, now); err != nil {
			s.logger.Debugw("failed to record sync time", "app_id", apps[i].ID, "error", err)
		}
	}

	s.logger.Infow("sync fan-out finished",
		"owner_id", ownerID,
		"triggered", result.Triggered,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return &result, nil
}

// ImportCSV triggers a CSV review import for an app.
func (s *service) ImportCSV(ctx context.Context, appID string, req *appModel.ImportCSVRequest) error {
	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return err
	}
	return s.trigger.ImportReviewsCSV(ctx, app.ID, req.CSVContent, app.Platform)
}

// FetchHistorical triggers a historical review backfill for an app.
func (s *service) FetchHistorical(
	ctx context.Context,
	appID string,
	req *appModel.HistoricalFetchRequest,
) error {
	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return err
	}
	return s.trigger.FetchHistoricalReviews(ctx, app.ID, req.BucketID, app.PackageName, req.Year)
}
