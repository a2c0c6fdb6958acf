// Package common defines shared constants and sentinel errors used across
// the sync engine. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound      = errors.New("not found")
	ErrNotConfigured = errors.New("spreadsheet connection is not configured")

	// Allocation errors.
	ErrVariantCapacity = errors.New("variant capacity exhausted")

	// Sync-level errors.
	ErrPendingChanges = errors.New("unsynced local changes pending")

	// Auth errors.
	ErrCredentialMissing = errors.New("service credential missing")

	// Validation errors. The row decoder is tolerant and skips bad rows;
	// this sentinel is for callers that need a strict mode.
	ErrValidation = errors.New("validation error")
)
