package store

import (
	"errors"
	"fmt"
)

// TimeoutError reports that the store did not answer within its
// deadline. Retryable by the caller.
type TimeoutError struct {
	Endpoint string
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("store timeout at %s: %v", e.Endpoint, e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// UnavailableError reports that the store could not be reached or
// refused the request. Retryable by the caller.
type UnavailableError struct {
	Endpoint string
	Cause    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable at %s: %v", e.Endpoint, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// IsTimeout reports whether err is a store timeout. Uses errors.As to
// handle wrapped errors.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsUnavailable reports whether err is store unavailability.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
