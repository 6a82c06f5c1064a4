package model

import "errors"

var (
	// ErrAppNotFound indicates that the requested app does not exist.
	ErrAppNotFound = errors.New("app not found")
	// ErrAppExists indicates that an app with the same package name and platform already exists for the owner.
	ErrAppExists = errors.New("app already connected")
	// ErrInvalidPlatform indicates an unsupported platform value.
	ErrInvalidPlatform = errors.New("platform must be android or ios")
	// ErrSettingsNotFound indicates that settings are missing for an app.
	ErrSettingsNotFound = errors.New("app settings not found")
	// ErrInvalidRating indicates a rating threshold outside 1-5.
	ErrInvalidRating = errors.New("rating threshold must be between 1 and 5")
	// ErrInvalidInterval indicates a non-positive interval value.
	ErrInvalidInterval = errors.New("interval must be at least 1 minute")
	// ErrCredentialsNotFound indicates that no iOS credentials are stored for the user.
	ErrCredentialsNotFound = errors.New("ios credentials not found")
	// ErrCredentialsRequired indicates an iOS operation attempted without stored credentials.
	ErrCredentialsRequired = errors.New("ios credentials required")
)
