package invoke

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specfirst/veridict/pkg/contracts"
)

// ReflectiveExecutor invokes Go functions through the reflect package. Panics
// raised by the operation are recovered and reported as raised causes; a
// non-nil trailing error return is reported the same way, since Go contracts
// state their exceptional outcomes through both channels.
type ReflectiveExecutor struct{}

// NewReflectiveExecutor returns the default executor.
func NewReflectiveExecutor() *ReflectiveExecutor { return &ReflectiveExecutor{} }

// Invoke runs the operation once. It validates the call shape up front so
// that harness mistakes surface as errors instead of being misread as the
// operation raising a cause.
func (e *ReflectiveExecutor) Invoke(ctx context.Context, op Operation, receiver any, args []any) (*contracts.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fv := reflect.ValueOf(op.Func)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("invoke: %s: operation is %T, not a func", op.Name, op.Func)
	}

	out := &contracts.Outcome{Receiver: receiver, Args: args}

	if op.Instance && isNil(receiver) {
		out.NilReceiver = true
		return out, nil
	}

	in := make([]any, 0, len(args)+1)
	if op.Instance {
		in = append(in, receiver)
	}
	in = append(in, args...)

	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("invoke: %s: variadic operations are not supported", op.Name)
	}
	if len(in) != ft.NumIn() {
		return nil, fmt.Errorf("invoke: %s: got %d inputs, operation takes %d", op.Name, len(in), ft.NumIn())
	}

	callArgs := make([]reflect.Value, len(in))
	for i, v := range in {
		av, err := argValue(ft.In(i), v)
		if err != nil {
			return nil, fmt.Errorf("invoke: %s: input %d: %w", op.Name, i, err)
		}
		callArgs[i] = av
	}

	results, raised := call(fv, callArgs)
	if raised != nil {
		out.Raised = raised
		return out, nil
	}

	// A non-nil trailing error counts as the raised cause; otherwise the
	// first result, if any, is the return value.
	if n := len(results); n > 0 {
		if last := results[n-1]; last.Type().Implements(errType) {
			if !last.IsNil() {
				err := last.Interface().(error)
				out.Raised = &contracts.RaisedCause{
					Type:    contracts.CauseType(err),
					Message: err.Error(),
					Value:   err,
				}
				return out, nil
			}
			results = results[:n-1]
		}
	}
	if len(results) > 0 {
		out.ReturnValue = results[0].Interface()
	}
	return out, nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// call executes the function, converting a panic into a raised cause.
func call(fv reflect.Value, args []reflect.Value) (results []reflect.Value, raised *contracts.RaisedCause) {
	defer func() {
		if r := recover(); r != nil {
			raised = &contracts.RaisedCause{
				Type:    contracts.CauseType(r),
				Message: fmt.Sprint(r),
				Value:   r,
			}
			if err, ok := r.(error); ok {
				raised.Message = err.Error()
			}
		}
	}()
	return fv.Call(args), nil
}

func argValue(want reflect.Type, v any) (reflect.Value, error) {
	if v == nil {
		switch want.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(want), nil
		default:
			return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", want)
		}
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(want) {
		if rv.Type().ConvertibleTo(want) {
			return rv.Convert(want), nil
		}
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", rv.Type(), want)
	}
	return rv, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
