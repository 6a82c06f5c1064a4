// Package repository provides data access layer for the app module.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appModel "github.com/playreply/playreply/internal/app/model"
	reviewModel "github.com/playreply/playreply/internal/review/model"
)

// Repository defines the interface for app data access operations.
type Repository interface {
	// CreateWithSettings creates an app and its settings row in one transaction.
	CreateWithSettings(ctx context.Context, app *appModel.App, settings *appModel.AppSettings) error

	// GetByID finds an app by id.
	GetByID(ctx context.Context, appID string) (*appModel.App, error)

	// ListByOwner returns all apps connected by an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]appModel.App, error)

	// ListAll returns every connected app (scheduler sweep).
	ListAll(ctx context.Context) ([]appModel.App, error)

	// Delete removes an app and cascades to its settings, reviews and replies.
	Delete(ctx context.Context, appID string) error

	// GetSettings returns the settings row for an app.
	GetSettings(ctx context.Context, appID string) (*appModel.AppSettings, error)

	// SaveSettings persists a full settings row.
	SaveSettings(ctx context.Context, settings *appModel.AppSettings) error

	// TouchLastSynced records a completed sync trigger.
	TouchLastSynced(ctx context.Context, appID string, at time.Time) error

	// UpsertIOSCredentials inserts or replaces the user's credential row.
	UpsertIOSCredentials(ctx context.Context, creds *appModel.IOSCredentials) error

	// GetIOSCredentials returns the user's credential row, private key included.
	GetIOSCredentials(ctx context.Context, userID string) (*appModel.IOSCredentials, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new app repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithSettings creates an app and its settings row in one transaction.
// Settings always exist while the app exists.
func (r *repository) CreateWithSettings(
	ctx context.Context,
	app *appModel.App,
	settings *appModel.AppSettings,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&appModel.App{}).
			Where("owner_id = ? AND package_name = ? AND platform = ?",
				app.OwnerID, app.PackageName, app.Platform).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return appModel.ErrAppExists
		}

		if err := tx.Create(app).Error; err != nil {
			return err
		}
		return tx.Create(settings).Error
	})
}

// GetByID finds an app by id.
func (r *repository) GetByID(ctx context.Context, appID string) (*appModel.App, error) {
	var app appModel.App
	err := r.db.WithContext(ctx).
		Where("id = ?", appID).
		First(&app).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appModel.ErrAppNotFound
		}
		return nil, err
	}

	return &app, nil
}

// ListByOwner returns all apps connected by an owner.
func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]appModel.App, error) {
	var apps []appModel.App
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	if apps == nil {
		return []appModel.App{}, nil
	}

	return apps, nil
}

// ListAll returns every connected app.
func (r *repository) ListAll(ctx context.Context) ([]appModel.App, error) {
	var apps []appModel.App
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	if apps == nil {
		return []appModel.App{}, nil
	}

	return apps, nil
}

// Delete removes an app and cascades to its settings, reviews and replies.
func (r *repository) Delete(ctx context.Context, appID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", appID).Delete(&appModel.App{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return appModel.ErrAppNotFound
		}

		if err := tx.Where("app_id = ?", appID).Delete(&appModel.AppSettings{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&reviewModel.Reply{}).Error; err != nil {
			return err
		}
		return tx.Where("app_id = ?", appID).Delete(&reviewModel.Review{}).Error
	})
}

// GetSettings returns the settings row for an app.
func (r *repository) GetSettings(ctx context.Context, appID string) (*appModel.AppSettings, error) {
	var settings appModel.AppSettings
	err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		First(&settings).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appModel.ErrSettingsNotFound
		}
		return nil, err
	}

	return &settings, nil
}

// SaveSettings persists a full settings row.
func (r *repository) SaveSettings(ctx context.Context, settings *appModel.AppSettings) error {
	settings.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(settings).Error
}

// TouchLastSynced records a completed sync trigger.
func (r *repository) TouchLastSynced(ctx context.Context, appID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&appModel.AppSettings{}).
		Where("app_id = ?", appID).
		Update("last_synced_at", at)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appModel.ErrSettingsNotFound
	}
	return nil
}

// UpsertIOSCredentials inserts or replaces the user's credential row.
// The user_id primary key keeps the at-most-one-row-per-user contract.
func (r *repository) UpsertIOSCredentials(ctx context.Context, creds *appModel.IOSCredentials) error {
	creds.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"issuer_id", "key_id", "private_key", "updated_at",
			}),
		}).
		Create(creds).Error
}

// GetIOSCredentials returns the user's credential row, private key included.
// Callers outside the service layer must use the summary view instead.
func (r *repository) GetIOSCredentials(ctx context.Context, userID string) (*appModel.IOSCredentials, error) {
	var creds appModel.IOSCredentials
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&creds).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appModel.ErrCredentialsNotFound
		}
		return nil, err
	}

	return &creds, nil
}
