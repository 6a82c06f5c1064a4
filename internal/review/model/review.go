package model

import (
	"time"
)

// Review status values.
const (
	StatusNew     = "new"
	StatusPending = "pending"
	StatusReplied = "replied"
	StatusIgnored = "ignored"
)

// Reply send status values. SendStatusNone marks the absence of a reply row.
const (
	SendStatusNone     = ""
	SendStatusDraft    = "draft"
	SendStatusApproved = "approved"
	SendStatusSent     = "sent"
	SendStatusError    = "error"
)

// Review categories assigned by the generation workflow.
const (
	CategoryBug            = "bug"
	CategoryFeatureRequest = "feature_request"
	CategoryPerformance    = "performance"
	CategoryAngry          = "angry"
	CategoryPraise         = "praise"
	CategoryGeneral        = "general"
)

// ValidCategory reports whether c is a known category or empty.
func ValidCategory(c string) bool {
	switch c {
	case "", CategoryBug, CategoryFeatureRequest, CategoryPerformance,
		CategoryAngry, CategoryPraise, CategoryGeneral:
		return true
	}
	return false
}

// Review represents one user-submitted rating pulled from a store. Rows are
// created by the external sync workflow, never by this API.
// Matches the reviews table schema.
type Review struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(36)"                                          json:"id"`
	AppID      string    `gorm:"column:app_id;type:varchar(36);not null;uniqueIndex:ux_reviews_app_review,priority:1"   json:"app_id"`
	ReviewID   string    `gorm:"column:review_id;type:varchar(255);not null;uniqueIndex:ux_reviews_app_review,priority:2" json:"review_id"`
	Rating     int       `gorm:"column:rating;not null"                                                         json:"rating"`
	Text       string    `gorm:"column:text;type:text"                                                          json:"text"`
	AuthorName string    `gorm:"column:author_name;type:varchar(255)"                                           json:"author_name"`
	Language   string    `gorm:"column:language;type:varchar(16)"                                               json:"language"`
	Category   string    `gorm:"column:category;type:varchar(32)"                                               json:"category,omitempty"`
	Status     string    `gorm:"column:status;type:varchar(16);not null;default:'new';index:idx_reviews_status" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"                      json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Review) TableName() string {
	return "reviews"
}

// Reply represents the at-most-one response tied to a Review through the
// external review_id. Created by the generation workflow or by the local
// approve flow; the unique index enforces one reply per review.
// Matches the replies table schema.
type Reply struct {
	ID            string     `gorm:"primaryKey;column:id;type:varchar(36)"                                                        json:"id"`
	AppID         string     `gorm:"column:app_id;type:varchar(36);not null;uniqueIndex:ux_replies_app_review,priority:1"         json:"app_id"`
	ReviewID      string     `gorm:"column:review_id;type:varchar(255);not null;uniqueIndex:ux_replies_app_review,priority:2"     json:"review_id"`
	SuggestedText string     `gorm:"column:suggested_text;type:text"                                                              json:"suggested_text"`
	FinalText     string     `gorm:"column:final_text;type:text"                                                                  json:"final_text"`
	SendStatus    string     `gorm:"column:send_status;type:varchar(16);not null;default:'draft'"                                 json:"send_status"`
	SentAt        *time.Time `gorm:"column:sent_at;type:timestamptz"                                                              json:"sent_at,omitempty"`
	ErrorMessage  string     `gorm:"column:error_message;type:text"                                                               json:"error_message,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"                                    json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Reply) TableName() string {
	return "replies"
}
