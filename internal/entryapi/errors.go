package entryapi

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned when the configured base URL cannot form a
// valid request URL.
var ErrInvalidURL = errors.New("invalid API URL")

// TransportError wraps a connection-level failure (DNS, refused, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("could not reach time-entry API: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response from the time-entry API.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether resubmitting the same entry could succeed.
// Every failure except a malformed base URL is worth another try.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrInvalidURL)
}
