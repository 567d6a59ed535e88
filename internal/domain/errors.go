package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when neither coarse nor fine location access is granted.
	ErrPermissionDenied = errors.New("location permission not granted")

	// ErrLocationUnavailable is returned when the provider answered without a fix.
	ErrLocationUnavailable = errors.New("location not found")

	// ErrEmptyResponse is returned for a 2xx response that carries no usable body.
	ErrEmptyResponse = errors.New("empty response body")

	// ErrMalformedResponse wraps body decoding failures.
	ErrMalformedResponse = errors.New("malformed response body")
)

// APIError is a non-2xx answer from the remote service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Message)
}

// NetworkError is a transport-level failure: connection errors, timeouts and cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAPIStatus reports whether err is an APIError with the given status code.
func IsAPIStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
