package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates animator parameters outside their valid range.
	ErrInvalidConfig = errors.New("sim: invalid animator config")

	// ErrNoSink indicates Run was called without a frame sink.
	ErrNoSink = errors.New("sim: frame sink is required")
)

// FrameError wraps a sink failure with the frame that could not be written.
type FrameError struct {
	Frame   int
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("write frame %d: %v", e.Frame, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
