// Package model provides data transfer objects for the icon module.
package model

import "errors"

// IconResponse is the icon lookup result. IconURL is null when no icon
// could be resolved; Error carries a best-effort reason.
type IconResponse struct {
	IconURL *string `json:"iconUrl"`
	Error   string  `json:"error,omitempty"`
}

// Sentinel errors for the icon module.
var (
	// ErrMissingPackageName indicates the packageName parameter is absent.
	ErrMissingPackageName = errors.New("packageName is required")

	// ErrUnsupportedPlatform indicates the platform parameter is not
	// android or ios.
	ErrUnsupportedPlatform = errors.New("platform must be android or ios")
)
