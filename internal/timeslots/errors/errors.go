package errors

import "errors"

var (
	ErrNotFound          = errors.New("time slot not found")
	ErrInvalidID         = errors.New("invalid time slot ID format")
	ErrAssignmentExists  = errors.New("team is already assigned to this time slot")
	ErrAssignmentMissing = errors.New("team is not assigned to this time slot")
)
