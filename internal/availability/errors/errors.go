package errors

import "errors"

var (
	ErrNotFound = errors.New("availability block not found")

	ErrInvalidID = errors.New("invalid availability block ID format")

	ErrAlreadyBlocked = errors.New("day is already blocked")

	ErrCacheMiss = errors.New("availability cache miss")
)
