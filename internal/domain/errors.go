package domain

import "errors"

var (
	// ErrInvalidInput is returned for empty IDs, unknown kinds, or non-positive amounts
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a target, order, or account does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when an order transition does not match the
	// order's current state. The order is left untouched.
	ErrInvalidTransition = errors.New("invalid order transition")

	// ErrInsufficientBalance is returned when a transfer's debit side cannot cover
	// the amount. No partial transfer is ever applied.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyClaimed is returned to the losers of a concurrent claim race
	ErrAlreadyClaimed = errors.New("order already claimed")

	// ErrStoreUnavailable marks a transient store failure; callers may retry since
	// every operation is idempotent on its natural key or token
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDriftDetected is internal to the reconciliation job and never reaches an
	// end user
	ErrDriftDetected = errors.New("counter drift detected")
)
