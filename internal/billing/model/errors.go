package model

import "errors"

// Sentinel errors for the billing module.
var (
	// ErrMissingSignature indicates the signature header is absent.
	ErrMissingSignature = errors.New("missing signature header")

	// ErrInvalidSignature indicates the signature header is malformed or
	// does not match the payload.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMalformedEvent indicates the event body is not valid JSON or
	// lacks required fields.
	ErrMalformedEvent = errors.New("malformed billing event")

	// ErrOrganizationNotFound indicates no organization matches the
	// external id referenced by the event.
	ErrOrganizationNotFound = errors.New("organization not found")
)
