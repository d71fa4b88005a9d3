package core

import (
	"errors"
	"fmt"
)

var (
	// ErrGestureActive is returned when a manipulation starts while another
	// one still consumes the pointer stream.
	ErrGestureActive = errors.New("manipulation already in progress")
	// ErrNotManipulable is returned when a picked key has no pose owner.
	ErrNotManipulable = errors.New("object is not manipulable")
	// ErrUnknownName is returned for names absent from the environment.
	ErrUnknownName = errors.New("unknown name")
)

// EvaluationError reports a script that failed to run to its target.
type EvaluationError struct {
	Err error
	// Span locates the failing statement, when known.
	Span *Span
}

func (e *EvaluationError) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("evaluation failed at %s: %v", e.Span, e.Err)
	}
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// SolveError reports a kinematic solve that did not converge.
type SolveError struct {
	Residual   float64
	Iterations int
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solver did not converge after %d iterations (residual %.3g)", e.Iterations, e.Residual)
}

// AsEvaluationError extracts an *EvaluationError from err's chain.
func AsEvaluationError(err error) (*EvaluationError, bool) {
	var ee *EvaluationError
	ok := errors.As(err, &ee)
	return ee, ok
}
