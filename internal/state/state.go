// Package state models asynchronous screen state: an immutable State value and a Store
// that applies the latest action's result.
package state

import (
	"errors"

	"github.com/neexbeast/climascope/internal/domain"
)

// Affordance tells the presenter what the user can do about a failure.
type Affordance string

const (
	AffordanceNone            Affordance = ""
	AffordanceRetry           Affordance = "retry"
	AffordanceGrantPermission Affordance = "grant_permission"
)

// State is the observable state of one screen. Data and Error are never both set.
type State[T any] struct {
	IsLoading  bool       `json:"is_loading"`
	Data       *T         `json:"data,omitempty"`
	Error      string     `json:"error,omitempty"`
	Affordance Affordance `json:"affordance,omitempty"`
}

func Idle[T any]() State[T] {
	return State[T]{}
}

func Loading[T any]() State[T] {
	return State[T]{IsLoading: true}
}

func Success[T any](data T) State[T] {
	return State[T]{Data: &data}
}

func Failure[T any](err error) State[T] {
	return State[T]{Error: MessageFor(err), Affordance: AffordanceFor(err)}
}

// Failed reports whether the state carries an error.
func (s State[T]) Failed() bool {
	return s.Error != ""
}

// WithoutError returns s with the error and its affordance dismissed.
func (s State[T]) WithoutError() State[T] {
	s.Error = ""
	s.Affordance = AffordanceNone
	return s
}

// MessageFor renders err for display.
func MessageFor(err error) string {
	var apiErr *domain.APIError
	var netErr *domain.NetworkError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrPermissionDenied):
		return "Location permission not granted"
	case errors.Is(err, domain.ErrLocationUnavailable):
		return "Location not found"
	case errors.Is(err, domain.ErrEmptyResponse):
		return "Empty response body"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "Unexpected response from the weather service"
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.As(err, &netErr):
		return "Network error: " + netErr.Err.Error()
	default:
		return err.Error()
	}
}

// AffordanceFor picks the recovery action offered for err.
func AffordanceFor(err error) Affordance {
	var apiErr *domain.APIError
	var netErr *domain.NetworkError

	switch {
	case err == nil:
		return AffordanceNone
	case errors.Is(err, domain.ErrPermissionDenied):
		return AffordanceGrantPermission
	case errors.Is(err, domain.ErrLocationUnavailable),
		errors.Is(err, domain.ErrEmptyResponse),
		errors.Is(err, domain.ErrMalformedResponse),
		errors.As(err, &apiErr),
		errors.As(err, &netErr):
		return AffordanceRetry
	default:
		return AffordanceNone
	}
}
