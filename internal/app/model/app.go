package model

import (
	"time"
)

// Platform values for connected store listings.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// ValidPlatform reports whether p is a supported store platform.
func ValidPlatform(p string) bool {
	return p == PlatformAndroid || p == PlatformIOS
}

// App represents a connected store listing.
// Matches the apps table schema.
type App struct {
	ID          string    `gorm:"primaryKey;column:id;type:varchar(36)"                                json:"id"`
	PackageName string    `gorm:"column:package_name;type:varchar(255);not null;index:idx_apps_package" json:"package_name"`
	Platform    string    `gorm:"column:platform;type:varchar(16);not null"                            json:"platform"`
	Name        string    `gorm:"column:name;type:varchar(255);not null"                               json:"name"`
	IconURL     string    `gorm:"column:icon_url;type:text"                                            json:"icon_url,omitempty"`
	OwnerID     string    `gorm:"column:owner_id;type:varchar(255);not null;index:idx_apps_owner"      json:"owner_id"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"            json:"created_at"`
}

// TableName specifies the table name for GORM.
func (App) TableName() string {
	return "apps"
}

// Language modes for generated replies.
const (
	LanguageModeAuto = "auto"
)

// AppSettings holds automation configuration for an App. Exactly one row
// exists per app, created together with it.
type AppSettings struct {
	AppID                string     `gorm:"primaryKey;column:app_id;type:varchar(36)"                 json:"app_id"`
	AutoReplyEnabled     bool       `gorm:"column:auto_reply_enabled;not null;default:false"          json:"auto_reply_enabled"`
	AutoReplyMinRating   int        `gorm:"column:auto_reply_min_rating;not null;default:4"           json:"auto_reply_min_rating"`
	AutoApproveMinRating *int       `gorm:"column:auto_approve_min_rating"                            json:"auto_approve_min_rating,omitempty"`
	LanguageMode         string     `gorm:"column:language_mode;type:varchar(16);not null;default:'auto'" json:"language_mode"`
	SyncIntervalMinutes  int        `gorm:"column:sync_interval_minutes;not null;default:60"          json:"sync_interval_minutes"`
	AutoSendIntervalMin  int        `gorm:"column:auto_send_interval_minutes;not null;default:60"     json:"auto_send_interval_minutes"`
	LastSyncedAt         *time.Time `gorm:"column:last_synced_at;type:timestamptz"                    json:"last_synced_at,omitempty"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (AppSettings) TableName() string {
	return "app_settings"
}

// DefaultSettings returns the settings created alongside a new app.
func DefaultSettings(appID string) *AppSettings {
	return &AppSettings{
		AppID:               appID,
		AutoReplyEnabled:    false,
		AutoReplyMinRating:  4,
		LanguageMode:        LanguageModeAuto,
		SyncIntervalMinutes: 60,
		AutoSendIntervalMin: 60,
	}
}

// IOSCredentials holds a user's App Store Connect API credential triple.
// At most one row exists per user.
type IOSCredentials struct {
	UserID     string    `gorm:"primaryKey;column:user_id;type:varchar(255)"               json:"user_id"`
	IssuerID   string    `gorm:"column:issuer_id;type:varchar(255);not null"               json:"issuer_id"`
	KeyID      string    `gorm:"column:key_id;type:varchar(255);not null"                  json:"key_id"`
	PrivateKey string    `gorm:"column:private_key;type:text;not null"                     json:"-"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (IOSCredentials) TableName() string {
	return "ios_credentials"
}
