// Package model provides domain models and DTOs for the billing module.
package model

import "time"

// Subscription status values mirrored from the billing provider.
const (
	SubStatusActive   = "active"
	SubStatusCanceled = "canceled"
	SubStatusPastDue  = "past_due"
)

// Organization mirrors an external billing subscription. One row per
// external customer id.
type Organization struct {
	ID                     string    `gorm:"column:id;type:varchar(36);primaryKey"                         json:"id"`
	ExternalCustomerID     string    `gorm:"column:external_customer_id;type:varchar(255);not null;unique" json:"external_customer_id"`
	ExternalSubscriptionID string    `gorm:"column:external_subscription_id;type:varchar(255);index"       json:"external_subscription_id"`
	Plan                   string    `gorm:"column:plan;type:varchar(64)"                                  json:"plan"`
	SubscriptionStatus     string    `gorm:"column:subscription_status;type:varchar(32)"                   json:"subscription_status"`
	CreatedAt              time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"     json:"created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"     json:"updated_at"`
}

// TableName returns the table name for the Organization model.
func (Organization) TableName() string {
	return "organizations"
}

// BillingEvent is an append-only audit record of a processed webhook event.
// EventID is the provider's id, unique so redeliveries collapse.
type BillingEvent struct {
	ID             string    `gorm:"column:id;type:varchar(36);primaryKey"                     json:"id"`
	OrganizationID string    `gorm:"column:organization_id;type:varchar(36);index"             json:"organization_id"`
	EventID        string    `gorm:"column:event_id;type:varchar(255);not null;unique"         json:"event_id"`
	EventType      string    `gorm:"column:event_type;type:varchar(64);not null"               json:"event_type"`
	Amount         float64   `gorm:"column:amount;type:numeric"                                json:"amount"`
	Currency       string    `gorm:"column:currency;type:varchar(8)"                           json:"currency"`
	Payload        string    `gorm:"column:payload;type:text"                                  json:"-"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()" json:"created_at"`
}

// TableName returns the table name for the BillingEvent model.
func (BillingEvent) TableName() string {
	return "billing_events"
}
