package errors

import "errors"

var (
	ErrNotFound = errors.New("booking request not found")

	ErrInvalidID = errors.New("invalid booking request ID format")
)
