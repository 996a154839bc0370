package reports

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the backend could not be reached or failed
	// transiently. The request may succeed if retried later.
	ErrUnavailable = errors.New("report backend unavailable")
	// ErrRejected means the backend refused the request.
	ErrRejected = errors.New("report rejected")
)

// Error is a non-success response from the report backend.
type Error struct {
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("report backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("report backend returned status %d: %s", e.StatusCode, e.Message)
}

// Is matches ErrUnavailable for retryable errors and ErrRejected otherwise.
func (e *Error) Is(target error) bool {
	if e.Retryable {
		return target == ErrUnavailable
	}
	return target == ErrRejected
}

func statusError(code int, message string) *Error {
	return &Error{
		StatusCode: code,
		Message:    message,
		Retryable:  code == 429 || code >= 500,
	}
}
