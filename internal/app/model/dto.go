// Package model provides data transfer objects and domain models for the app module.
package model

import "encoding/json"

// CreateAppRequest represents the request to connect a store listing.
type CreateAppRequest struct {
	PackageName string `json:"package_name" binding:"required"`
	Platform    string `json:"platform"     binding:"required"`
	Name        string `json:"name"         binding:"required"`
	IconURL     string `json:"icon_url"`
}

// UpdateSettingsRequest represents a settings save. Optional fields are
// pointers; nil means "keep the current value". AutoApproveMinRating uses a
// double pointer so callers can distinguish "keep" (nil) from "clear to none"
// (pointer to nil).
type UpdateSettingsRequest struct {
	AutoReplyEnabled     *bool   `json:"auto_reply_enabled"`
	AutoReplyMinRating   *int    `json:"auto_reply_min_rating"`
	AutoApproveMinRating **int   `json:"-"`
	LanguageMode         *string `json:"language_mode"`
	SyncIntervalMinutes  *int    `json:"sync_interval_minutes"`
	AutoSendIntervalMin  *int    `json:"auto_send_interval_minutes"`
}

// SettingsPatch is the wire shape of a settings save. auto_approve_min_rating
// distinguishes absent (keep) from null (clear) via RawAutoApprove.
type SettingsPatch struct {
	AutoReplyEnabled     *bool            `json:"auto_reply_enabled"`
	AutoReplyMinRating   *int             `json:"auto_reply_min_rating"`
	RawAutoApprove       *OptionalInt     `json:"auto_approve_min_rating"`
	LanguageMode         *string          `json:"language_mode"`
	SyncIntervalMinutes  *int             `json:"sync_interval_minutes"`
	AutoSendIntervalMin  *int             `json:"auto_send_interval_minutes"`
}

// ToUpdateRequest converts the wire patch into the service request shape.
func (p SettingsPatch) ToUpdateRequest() *UpdateSettingsRequest {
	req := &UpdateSettingsRequest{
		AutoReplyEnabled:    p.AutoReplyEnabled,
		AutoReplyMinRating:  p.AutoReplyMinRating,
		LanguageMode:        p.LanguageMode,
		SyncIntervalMinutes: p.SyncIntervalMinutes,
		AutoSendIntervalMin: p.AutoSendIntervalMin,
	}
	if p.RawAutoApprove != nil {
		req.AutoApproveMinRating = &p.RawAutoApprove.Value
	}
	return req
}

// OptionalInt is an int that distinguishes JSON null from an absent field.
type OptionalInt struct {
	Value *int
}

// UnmarshalJSON accepts either an integer or null.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// SaveIOSCredentialsRequest represents an App Store Connect credential upsert.
type SaveIOSCredentialsRequest struct {
	IssuerID   string `json:"issuer_id"   binding:"required"`
	KeyID      string `json:"key_id"      binding:"required"`
	PrivateKey string `json:"private_key" binding:"required"`
}

// IOSCredentialsSummary is the caller-facing credential view. The private key
// never leaves the service; HasKey only signals that one is stored.
type IOSCredentialsSummary struct {
	IssuerID string `json:"issuer_id"`
	KeyID    string `json:"key_id"`
	HasKey   bool   `json:"has_key"`
}

// ImportCSVRequest represents a CSV review import trigger.
type ImportCSVRequest struct {
	CSVContent string `json:"csv_content" binding:"required"`
}

// HistoricalFetchRequest represents a historical backfill trigger.
type HistoricalFetchRequest struct {
	BucketID string `json:"bucket_id" binding:"required"`
	Year     int    `json:"year"      binding:"required"`
}

// SyncResult reports the outcome of a sync-all fan-out.
type SyncResult struct {
	Triggered int      `json:"triggered"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
