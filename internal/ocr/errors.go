package ocr

import (
	"errors"
	"fmt"
)

// Sentinel errors for text recognition.
var (
	ErrInvalidImage      = errors.New("ocr: image bytes cannot be decoded")
	ErrUnsupportedFormat = errors.New("ocr: unsupported image format")
	ErrNoTextFound       = errors.New("ocr: no text found in image")
	ErrServer            = errors.New("ocr: recognition service error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "decode", "recognize"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
