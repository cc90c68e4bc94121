package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for 404-class responses on single-item
	// operations so callers can refresh the list instead of retrying.
	ErrNotFound = errors.New("product not found")

	// ErrEmptyResponse is returned when a mutation expected an entity body
	// and the backend sent none.
	ErrEmptyResponse = errors.New("empty response body")
)

// TransportError covers network failures, timeouts, decode failures, and
// non-2xx responses. StatusCode is zero when no HTTP response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func transportErr(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func statusErr(op string, code int) *TransportError {
	return &TransportError{Op: op, StatusCode: code}
}
