package errors

import "errors"

var (
	ErrHallNotFound = errors.New("hall not found")

	ErrCourtNotFound = errors.New("court not found")

	ErrInvalidID = errors.New("invalid hall ID format")

	ErrHallInactive = errors.New("hall is not active")
)
