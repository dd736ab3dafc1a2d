package errors

import "errors"

var (
	ErrNotFound = errors.New("sitter not found")
)
