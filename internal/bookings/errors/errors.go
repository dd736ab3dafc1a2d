package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusMismatch means a conditional status update matched no booking
	// in the expected state.
	ErrStatusMismatch = errors.New("booking is not in the expected status")
)
