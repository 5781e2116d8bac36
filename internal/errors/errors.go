// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrPipeClosed          = errors.New("pipe is closed")
	ErrWriteClosed         = errors.New("pipe write side is closed")
	ErrRelayClosed         = errors.New("relay is closed")
	ErrUpstreamUnavailable = errors.New("upstream is unavailable")
)

// RelayError represents a failure while relaying one direction of a
// connection.
type RelayError struct {
	ConnID    string
	Direction string
	Err       error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay error: conn=%s direction=%s: %v",
		e.ConnID, e.Direction, e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// DialError represents a failed upstream dial.
type DialError struct {
	Addr string
	Err  error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("dial error: addr=%s: %v", e.Addr, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// IsClosed reports whether an error indicates an orderly shutdown of the
// pipe or relay, as opposed to a transport failure.
func IsClosed(err error) bool {
	return errors.Is(err, ErrPipeClosed) ||
		errors.Is(err, ErrWriteClosed) ||
		errors.Is(err, ErrRelayClosed)
}
