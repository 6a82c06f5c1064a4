// Package repository provides data access layer for billing module.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playreply/playreply/internal/billing/model"
)

// Repository defines the interface for billing data access operations.
type Repository interface {
	// UpsertOrganization creates or refreshes the organization row keyed by
	// external customer id.
	UpsertOrganization(ctx context.Context, org *model.Organization) (*model.Organization, error)

	// UpdateBySubscription patches status (and plan, when non-empty) of the
	// organization holding the given external subscription id.
	UpdateBySubscription(ctx context.Context, subscriptionID, status, plan string) error

	// GetByCustomerID returns the organization for an external customer id.
	GetByCustomerID(ctx context.Context, customerID string) (*model.Organization, error)

	// AppendEvent records a billing event. Returns false without error when
	// the event id was already recorded.
	AppendEvent(ctx context.Context, event *model.BillingEvent) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new billing repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// UpsertOrganization creates or refreshes the organization row keyed by
// external customer id.
func (r *repository) UpsertOrganization(ctx context.Context, org *model.Organization) (*model.Organization, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"external_subscription_id", "plan", "subscription_status", "updated_at",
			}),
		}).
		Create(org).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row, not the insert candidate.
	var saved model.Organization
	err = r.db.WithContext(ctx).
		Where("external_customer_id = ?", org.ExternalCustomerID).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateBySubscription patches status (and plan, when non-empty) of the
// organization holding the given external subscription id.
func (r *repository) UpdateBySubscription(ctx context.Context, subscriptionID, status, plan string) error {
	updates := map[string]interface{}{"subscription_status": status}
	if plan != "" {
		updates["plan"] = plan
	}

	result := r.db.WithContext(ctx).
		Model(&model.Organization{}).
		Where("external_subscription_id = ?", subscriptionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrOrganizationNotFound
	}
	return nil
}

// GetByCustomerID returns the organization for an external customer id.
func (r *repository) GetByCustomerID(ctx context.Context, customerID string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.WithContext(ctx).
		Where("external_customer_id = ?", customerID).
		First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

// AppendEvent records a billing event. Returns false without error when the
// event id was already recorded.
func (r *repository) AppendEvent(ctx context.Context, event *model.BillingEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
