// Package invoke defines the execution collaborator: given an operation, a
// receiver, and arguments, it executes the operation exactly once and reports
// a return value or a raised cause. The reflective executor in this package
// is the default implementation for operations expressed as Go functions.
package invoke

import (
	"context"

	"github.com/specfirst/veridict/pkg/contracts"
)

// Operation describes one invocable operation under test.
type Operation struct {
	// Name is the qualified operation name, matching the specification
	// catalog's identifier.
	Name string

	// Func is the Go function to invoke. For an instance operation the
	// receiver is passed as the first parameter.
	Func any

	// Instance marks an operation that requires a receiver.
	Instance bool
}

// Executor runs an operation exactly once against concrete inputs. A nil
// receiver on an instance operation is reported on the outcome as a distinct
// contract violation, never as a raised cause. The returned error is reserved
// for harness faults (wrong arity, unassignable inputs); outcomes of the
// operation itself, including panics, are data.
type Executor interface {
	Invoke(ctx context.Context, op Operation, receiver any, args []any) (*contracts.Outcome, error)
}
