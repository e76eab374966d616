package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for closure operations.
var (
	// ErrInvalidConfig indicates a coefficient or case setting outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNotConverged indicates a linear solve stopped before reaching its tolerance.
	ErrNotConverged = errors.New("dynamo: linear solve did not converge")

	// ErrDimensionMismatch indicates mismatched field sizes or physical dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch")

	// ErrInvalidState indicates a field holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the outer iteration loop was interrupted.
	ErrContextCanceled = errors.New("dynamo: run canceled by context")

	// ErrUnknownComponent indicates a registry lookup for an unregistered name.
	ErrUnknownComponent = errors.New("dynamo: unknown component")
)

// ConfigError names the offending setting of an ErrInvalidConfig.
type ConfigError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidConfig, e.Key, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IterationError wraps an error with outer-iteration context.
type IterationError struct {
	Iteration int
	Time      float64
	Wrapped   error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("iteration %d (t=%.6g): %v", e.Iteration, e.Time, e.Wrapped)
}

func (e *IterationError) Unwrap() error {
	return e.Wrapped
}
