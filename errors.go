package psalm

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates an input failed validation before any
	// network call was attempted.
	ErrValidation = errors.New("validation error")

	// ErrAborted indicates the user cancelled an in-flight stream. It is
	// a graceful terminal condition, not a transport failure.
	ErrAborted = errors.New("aborted")

	// ErrSessionNotFound indicates the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrMessageNotFound indicates the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrGenerationInFlight indicates a generation is already running for
	// the session and a second concurrent request was rejected.
	ErrGenerationInFlight = errors.New("generation already in flight")

	// ErrStreamClosed indicates a read from a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// StatusError is a transport failure carrying the HTTP status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: HTTP %d", e.Code)
}
