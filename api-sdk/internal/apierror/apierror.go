package apierror

import (
	"fmt"
	"net/http"
)

// TransportError means the command never produced a response envelope: the
// network failed, the attempt timed out or a gateway answered in its place.
// Transport errors are retried.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CommandError is an answer from the server that rejected the request, such
// as "Room not found". It is never retried.
type CommandError struct {
	StatusCode int
	Message    string
}

func (e *CommandError) Error() string {
	return e.Message
}
