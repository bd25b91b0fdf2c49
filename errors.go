package qd

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by qd operations. Use [errors.Is] to test for
// them, as returned errors may wrap these with additional context.
var (
	// ErrInvalidImageData is returned when raw pixel data does not match the
	// declared dimensions or format.
	ErrInvalidImageData = errors.New("qd: invalid image data")

	// ErrCanvasClosed is returned when drawing on a closed canvas.
	ErrCanvasClosed = errors.New("qd: canvas is closed")
)

// RenderError wraps a failure from the rendering backend with the
// operation that triggered it.
type RenderError struct {
	// Op is the high-level operation, such as "flush" or "create texture".
	Op string
	// Err is the underlying backend error.
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("qd: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// renderErr wraps err as a RenderError unless it is nil.
func renderErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RenderError{Op: op, Err: err}
}
