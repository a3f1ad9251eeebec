package common

import "errors"

var (

	// repository specific errors
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")

	// service specific errors
	ErrSelfFollow      = errors.New("cannot follow yourself")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")

	// push delivery failures are logged, never returned to callers
	ErrDeliveryFailure = errors.New("push delivery failed")
)
