package repository

import "errors"

// Sentinel errors returned by repositories
var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateBooking is returned when an active request with the same booking fingerprint exists
	ErrDuplicateBooking = errors.New("duplicate booking")
)

// Error format strings for repository operations
const (
	errFmtBeginTx      = "failed to begin transaction: %w"
	errFmtCommitTx     = "failed to commit transaction: %w"
	errFmtRowsAffected = "failed to get rows affected: %w"
)

// Constraint and index names the repositories react to
const (
	constraintCustomerEmail       = "UQ_CUSTOMERS_EMAIL"
	constraintPricingKey          = "UQ_PRICING_KEY"
	indexActiveBookingFingerprint = "UX_SR_ACTIVE_FINGERPRINT"
)
