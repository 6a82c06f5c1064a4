package database

import (
	"fmt"

	"gorm.io/gorm"

	appModel "github.com/playreply/playreply/internal/app/model"
	billingModel "github.com/playreply/playreply/internal/billing/model"
	reviewModel "github.com/playreply/playreply/internal/review/model"
)

// AutoMigrate creates or updates the schema for all application models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	err := db.AutoMigrate(
		&appModel.App{},
		&appModel.AppSettings{},
		&appModel.IOSCredentials{},
		&reviewModel.Review{},
		&reviewModel.Reply{},
		&billingModel.Organization{},
		&billingModel.BillingEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
