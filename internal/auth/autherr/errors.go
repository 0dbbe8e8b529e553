// Package autherr defines the error kinds surfaced by the auth flow.
//
// Errors are plain values propagated with explicit returns; only the HTTP
// boundary classifies them (errors.Is / errors.As) into status codes.
package autherr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing or invalid configuration, including key material.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation marks a provider payload that does not match the expected shape.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownProvider is returned for a provider name with no registered client.
	ErrUnknownProvider = errors.New("unsupported OAuth provider")
)

// Reasons carried by StateError. They are part of the observable contract.
const (
	ReasonNotInitialized   = "Authentication flow not initialized"
	ReasonStateMismatch    = "State mismatch"
	ReasonInvalidState     = "Authentication state is invalid"
	ReasonProviderMismatch = "Authentication cookie provider mismatch"
)

// StateError is a client-caused rejection of the state cookie or parameter.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return e.Reason
}

// NewStateError returns a StateError with the given reason.
func NewStateError(reason string) *StateError {
	return &StateError{Reason: reason}
}

// UpstreamError carries a non-success status returned by an OAuth provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// NewUpstreamError builds the error for a failed provider call.
func NewUpstreamError(provider, call string, status int) *UpstreamError {
	return &UpstreamError{
		Provider:   provider,
		StatusCode: status,
		Message:    fmt.Sprintf("%s %s error: %d", provider, call, status),
	}
}

// Validationf wraps ErrValidation with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
