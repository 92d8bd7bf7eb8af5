// Package contracts defines the shared record types of the verdict pipeline:
// the classification of one invocation attempt, the prestate it was prepared
// from, and the outcome it produced.
//
// Everything here is plain data. The types are produced and consumed across
// package boundaries (condition, check, invoke, oracle) and carry no behavior
// beyond equality and context construction.
package contracts

// Verdict is the final classification of one invocation attempt.
type Verdict string

const (
	// VerdictPass means the call met every expectation that applied to it.
	VerdictPass Verdict = "PASS"

	// VerdictExpected means the call raised a cause that a satisfied
	// throws-guard required.
	VerdictExpected Verdict = "EXPECTED"

	// VerdictError means the real outcome disagreed with a satisfied
	// expectation: an unmet property, a mismatched cause, or a missing one.
	VerdictError Verdict = "ERROR"

	// VerdictInvalid means the prestate satisfied no guard although
	// specifications exist. The attempt is not a meaningful test and not a
	// failure of the operation under test.
	VerdictInvalid Verdict = "INVALID"
)

// Judgment is the result of consulting a verdict handler against the real
// outcome of a call. For VerdictError it names the unmet clause or the
// mismatched cause type.
type Judgment struct {
	Verdict Verdict `json:"verdict"`

	// Reason is a human-readable explanation of the classification.
	Reason string `json:"reason,omitempty"`

	// UnmetClause is the source text of the property or the expected cause
	// type that the outcome failed, when Verdict is ERROR.
	UnmetClause string `json:"unmet_clause,omitempty"`

	// RaisedType is the type of the cause actually raised, when one was and
	// it mattered to the classification.
	RaisedType string `json:"raised_type,omitempty"`
}

// Pass returns a passing judgment.
func Pass() Judgment {
	return Judgment{Verdict: VerdictPass}
}

// Invalid returns an INVALID judgment with the given reason.
func Invalid(reason string) Judgment {
	return Judgment{Verdict: VerdictInvalid, Reason: reason}
}
