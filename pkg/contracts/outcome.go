package contracts

// Prestate is the observable state before a call: the receiver and the
// concrete arguments. It is snapshotted by the caller before execution and is
// the evaluation context for guards.
type Prestate struct {
	Receiver any
	Args     []any
}

// Activation builds the guard evaluation context for this prestate.
func (p Prestate) Activation() map[string]any {
	args := p.Args
	if args == nil {
		args = []any{}
	}
	return map[string]any{
		"receiver": p.Receiver,
		"args":     args,
	}
}

// RaisedCause describes the cause a call raised instead of returning: the
// recovered panic value or a non-nil trailing error.
type RaisedCause struct {
	// Type is the canonical type name of the cause, per CauseType.
	Type string `json:"type"`

	// Message is the cause's message, if it had one.
	Message string `json:"message,omitempty"`

	// Value is the raised value itself.
	Value any `json:"-"`
}

// Outcome is the result of executing an operation exactly once: either a
// return value or a raised cause, plus the poststate observables.
type Outcome struct {
	Receiver    any
	Args        []any
	ReturnValue any

	// Raised is non-nil iff the call raised a cause instead of returning.
	Raised *RaisedCause

	// NilReceiver marks an instance operation invoked on a nil receiver.
	// This is a distinct contract violation, never conflated with a raised
	// cause.
	NilReceiver bool
}

// Returned reports whether the call completed with a normal return.
func (o *Outcome) Returned() bool {
	return o.Raised == nil && !o.NilReceiver
}

// Activation builds the property evaluation context for this poststate.
// Properties apply only to a non-exceptional poststate, so the result slot is
// the return value.
func (o *Outcome) Activation() map[string]any {
	args := o.Args
	if args == nil {
		args = []any{}
	}
	return map[string]any{
		"receiver": o.Receiver,
		"args":     args,
		"result":   o.ReturnValue,
	}
}
