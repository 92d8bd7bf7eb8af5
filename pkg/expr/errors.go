package expr

import (
	"errors"
	"fmt"
)

// EvalError reports that a guard or property predicate itself failed during
// evaluation. It is a distinct outcome: the caller must abort classification
// of the attempt, never treat the predicate as false.
type EvalError struct {
	// Source is the expression that failed.
	Source string

	// Err is the underlying evaluation failure.
	Err error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("expr: evaluating %q: %v", e.Source, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// IsEvalError reports whether err is (or wraps) a predicate evaluation
// failure.
func IsEvalError(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee)
}
