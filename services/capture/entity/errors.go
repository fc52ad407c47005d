package entity

import (
	"errors"
	"fmt"
)

var (
	// Capture surface failures.
	ErrCaptureDenied = errors.New("tab capture denied")
	ErrNoActiveTab   = errors.New("no active tab for the given id")

	// Recorder state machine violations.
	ErrAlreadyArmed = errors.New("recorder already armed")
	ErrNotArmed     = errors.New("recorder not armed")
	ErrNotRecording = errors.New("no recording in progress")

	// Coordinator invariant.
	ErrAlreadyRecording = errors.New("a recording session is already active")

	// A cross-context call whose receiving context went away before replying.
	ErrChannelClosed = errors.New("message channel closed before response")

	// Upload transport failure (DNS, refused connection, timeout).
	ErrNetwork = errors.New("network error")
)

// RecorderFault is an asynchronous recorder failure surfaced out of band,
// e.g. an encoder dying mid-session. Partial segments are never salvaged.
type RecorderFault struct {
	Reason string
}

func (f *RecorderFault) Error() string {
	return fmt.Sprintf("recorder fault: %s", f.Reason)
}

// ServerError is a non-2xx reply from the ingestion endpoint, with the
// response body preserved verbatim for display.
type ServerError struct {
	Code int
	Body string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}
