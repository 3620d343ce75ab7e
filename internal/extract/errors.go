package extract

import (
	"errors"
	"fmt"
)

// Sentinel errors for structured extraction.
var (
	ErrRequestFailed      = errors.New("extract: request failed")
	ErrEmptyResponse      = errors.New("extract: no content returned")
	ErrUndecodableContent = errors.New("extract: undecodable content")
)

// Error wraps an underlying error with operation context.
// Status carries the HTTP status code for ErrRequestFailed.
type Error struct {
	Op     string // Operation: "fromText", "fromImageURL"
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("extract %s [status %d]: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
