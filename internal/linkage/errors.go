package linkage

import (
	"errors"
	"fmt"
)

// Domain errors for chain construction.
var (
	// ErrEmptyChain indicates a chain without arms.
	ErrEmptyChain = errors.New("linkage: chain must contain at least one arm")

	// ErrInvalidArm indicates an arm with NaN/Inf values or a negative radius.
	ErrInvalidArm = errors.New("linkage: invalid arm (NaN, Inf or negative radius)")

	// ErrSamplerBounds indicates a sampler configuration outside its valid range.
	ErrSamplerBounds = errors.New("linkage: sampler parameter out of valid bounds")
)

// ArmError wraps an error with the index of the offending arm.
type ArmError struct {
	Index   int
	Arm     Arm
	Wrapped error
}

func (e *ArmError) Error() string {
	return fmt.Sprintf("arm %d (r=%.3f, w=%.5f): %v", e.Index, e.Arm.Radius, e.Arm.Speed, e.Wrapped)
}

func (e *ArmError) Unwrap() error {
	return e.Wrapped
}
