package errors

import "errors"

var (
	ErrNotFound = errors.New("notification not found")

	ErrInvalidID = errors.New("invalid notification ID format")

	// ErrDuplicateEvent means a notification with the same event id is
	// already stored.
	ErrDuplicateEvent = errors.New("notification event already stored")
)
