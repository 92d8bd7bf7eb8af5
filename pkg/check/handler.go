// Package check implements the verdict handlers consulted after the real
// invocation of an operation. A handler is produced once per attempt, before
// execution, and classifies the actual outcome exactly once afterwards.
//
// Handlers form a small closed set of variants rather than an open class
// hierarchy: PassThrough (the caller-supplied baseline), Invalid,
// ExpectedException, and PostCondition composed before an inner handler.
package check

import (
	"fmt"
	"strings"

	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
)

// Kind identifies a handler variant.
type Kind int

const (
	// KindPassThrough defers entirely to the baseline judgment.
	KindPassThrough Kind = iota

	// KindInvalid classifies the attempt INVALID regardless of the outcome.
	KindInvalid

	// KindExpectedException requires the call to raise a cause matching one
	// of the recorded throws sets.
	KindExpectedException

	// KindPostCondition checks properties against the poststate, composed
	// before an inner handler.
	KindPostCondition
)

func (k Kind) String() string {
	switch k {
	case KindPassThrough:
		return "pass-through"
	case KindInvalid:
		return "invalid"
	case KindExpectedException:
		return "expected-exception"
	case KindPostCondition:
		return "post-condition"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// JudgeFunc is the baseline judgment applied when no stronger expectation
// governs the call.
type JudgeFunc func(out *contracts.Outcome) contracts.Judgment

// Handler is one verdict handler. The zero value is not usable; construct
// through the variant constructors below.
type Handler struct {
	kind  Kind
	judge JudgeFunc             // KindPassThrough
	sets  []contracts.ThrowsSet // KindExpectedException
	props []*expr.Property      // KindPostCondition
	inner *Handler              // KindPostCondition
}

// Kind returns the handler variant.
func (h *Handler) Kind() Kind { return h.kind }

// PassThrough wraps a baseline judgment as a handler.
func PassThrough(judge JudgeFunc) *Handler {
	return &Handler{kind: KindPassThrough, judge: judge}
}

// DefaultBaseline is the conventional baseline: ERROR when an undeclared
// cause propagates or an instance operation was invoked on a nil receiver,
// otherwise PASS. The declared set lists causes the operation's signature
// already permits.
func DefaultBaseline(declared contracts.ThrowsSet) *Handler {
	return PassThrough(func(out *contracts.Outcome) contracts.Judgment {
		if out.NilReceiver {
			return contracts.Judgment{
				Verdict: contracts.VerdictError,
				Reason:  "instance operation invoked on nil receiver",
			}
		}
		if out.Raised != nil && !declared.Contains(out.Raised.Type) {
			return contracts.Judgment{
				Verdict:    contracts.VerdictError,
				Reason:     fmt.Sprintf("undeclared cause %s raised", out.Raised.Type),
				RaisedType: out.Raised.Type,
			}
		}
		return contracts.Pass()
	})
}

// Invalid returns the handler that classifies INVALID regardless of the
// outcome. An invalid attempt is excluded from further use as a behavioral
// witness.
func Invalid() *Handler {
	return &Handler{kind: KindInvalid}
}

// ExpectedException returns the handler for a call whose contract requires a
// cause to be raised. Membership is the union across sets: the raised type
// must match a clause in at least one set.
func ExpectedException(sets []contracts.ThrowsSet) *Handler {
	return &Handler{kind: KindExpectedException, sets: sets}
}

// PostCondition composes property checks before an inner handler. Both must
// pass; a failing inner judgment takes precedence, since properties apply
// only to a non-exceptional poststate.
func PostCondition(props []*expr.Property, inner *Handler) *Handler {
	return &Handler{kind: KindPostCondition, props: props, inner: inner}
}

// ExpectedSets returns the recorded throws sets of an expected-exception
// handler, in fold order.
func (h *Handler) ExpectedSets() []contracts.ThrowsSet { return h.sets }

// Inner returns the composed inner handler of a post-condition handler, or
// nil.
func (h *Handler) Inner() *Handler { return h.inner }

// Classify judges the real outcome of the call. It must be consulted exactly
// once per attempt.
func (h *Handler) Classify(out *contracts.Outcome) contracts.Judgment {
	switch h.kind {
	case KindInvalid:
		return contracts.Invalid("prestate satisfied no specification guard")

	case KindExpectedException:
		return h.classifyExpected(out)

	case KindPostCondition:
		return h.classifyPostConditions(out)

	default:
		return h.judge(out)
	}
}

func (h *Handler) classifyExpected(out *contracts.Outcome) contracts.Judgment {
	if out.NilReceiver {
		return contracts.Judgment{
			Verdict: contracts.VerdictError,
			Reason:  "instance operation invoked on nil receiver",
		}
	}
	if out.Raised == nil {
		return contracts.Judgment{
			Verdict:     contracts.VerdictError,
			Reason:      fmt.Sprintf("expected one of %s, but the call returned normally", describeSets(h.sets)),
			UnmetClause: describeSets(h.sets),
		}
	}
	for _, set := range h.sets {
		if set.Contains(out.Raised.Type) {
			return contracts.Judgment{
				Verdict:    contracts.VerdictExpected,
				Reason:     fmt.Sprintf("raised %s as the specification requires", out.Raised.Type),
				RaisedType: out.Raised.Type,
			}
		}
	}
	return contracts.Judgment{
		Verdict:     contracts.VerdictError,
		Reason:      fmt.Sprintf("raised %s, expected one of %s", out.Raised.Type, describeSets(h.sets)),
		UnmetClause: describeSets(h.sets),
		RaisedType:  out.Raised.Type,
	}
}

func (h *Handler) classifyPostConditions(out *contracts.Outcome) contracts.Judgment {
	// The inner handler rules first: an unexpected cause outranks property
	// evaluation.
	inner := h.inner.Classify(out)
	if inner.Verdict != contracts.VerdictPass {
		return inner
	}
	if !out.Returned() {
		// Inner accepted a raised cause; there is no poststate for the
		// properties to constrain.
		return inner
	}

	activation := out.Activation()
	for _, prop := range h.props {
		ok, err := prop.Eval(activation)
		if err != nil {
			return contracts.Judgment{
				Verdict:     contracts.VerdictError,
				Reason:      fmt.Sprintf("post-condition evaluation failed: %v", err),
				UnmetClause: prop.Source(),
			}
		}
		if !ok {
			return contracts.Judgment{
				Verdict:     contracts.VerdictError,
				Reason:      fmt.Sprintf("post-condition %q not satisfied", prop.Source()),
				UnmetClause: prop.Source(),
			}
		}
	}
	return inner
}

func describeSets(sets []contracts.ThrowsSet) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = s.String()
	}
	return strings.Join(parts, " or ")
}
