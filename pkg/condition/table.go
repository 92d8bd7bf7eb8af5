package condition

import (
	"github.com/specfirst/veridict/pkg/check"
	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
)

// ExpectedOutcomeTable records the outcome of checking, in the prestate, all
// guard expressions attached to one operation call. Built fresh per attempt,
// append-only while pairs fold in, then read once to produce a verdict
// handler and discarded.
//
// Each attempt owns its table: it is confined to one sequential unit of work
// and needs no synchronization.
type ExpectedOutcomeTable struct {
	// isEmpty stays true forever iff the catalog had zero pairs. Even a row
	// that contributes nothing flips it, because a consulted specification is
	// what distinguishes an invalid prestate from an unspecified one.
	isEmpty bool

	// hasSatisfiedGuardExpression is true iff at least one property-guard
	// evaluated true.
	hasSatisfiedGuardExpression bool

	// postConditions are the properties whose guard was satisfied, in fold
	// order.
	postConditions []*expr.Property

	// exceptionSets are the non-empty throws sets whose guard was satisfied,
	// in fold order.
	exceptionSets []contracts.ThrowsSet
}

// NewExpectedOutcomeTable creates an empty table.
func NewExpectedOutcomeTable() *ExpectedOutcomeTable {
	return &ExpectedOutcomeTable{isEmpty: true}
}

// Add folds the outcome of checking one specification pair's guards into the
// table.
//
// guardSatisfied reports the property-guard only; throws-guards are evaluated
// by the caller, which passes the set iff its own guard held. A non-empty set
// is therefore recorded regardless of guardSatisfied.
func (t *ExpectedOutcomeTable) Add(guardSatisfied bool, property *expr.Property, throwsClauses contracts.ThrowsSet) {
	// An empty table cannot represent a prestate for which the call is
	// invalid, so the table becomes non-empty even when the entry has an
	// unsatisfied guard and nothing else.
	t.isEmpty = false
	if guardSatisfied {
		if property != nil {
			t.postConditions = append(t.postConditions, property)
		}
		t.hasSatisfiedGuardExpression = true
	}
	if !throwsClauses.IsEmpty() {
		t.exceptionSets = append(t.exceptionSets, throwsClauses)
	}
}

// IsEmpty reports whether no pair has folded into the table.
func (t *ExpectedOutcomeTable) IsEmpty() bool { return t.isEmpty }

// HasSatisfiedGuardExpression reports whether at least one property-guard
// evaluated true.
func (t *ExpectedOutcomeTable) HasSatisfiedGuardExpression() bool {
	return t.hasSatisfiedGuardExpression
}

// PostConditions returns the recorded properties in fold order.
func (t *ExpectedOutcomeTable) PostConditions() []*expr.Property {
	return append([]*expr.Property(nil), t.postConditions...)
}

// ExceptionSets returns the recorded throws sets in fold order.
func (t *ExpectedOutcomeTable) ExceptionSets() []contracts.ThrowsSet {
	return append([]contracts.ThrowsSet(nil), t.exceptionSets...)
}

// IsInvalidPrestate reports a definitively invalid prestate: specifications
// were consulted, no property-guard was ever satisfied, and no exception is
// expected. Query it only after every pair for the attempt has folded in.
func (t *ExpectedOutcomeTable) IsInvalidPrestate() bool {
	return !t.isEmpty && !t.hasSatisfiedGuardExpression && len(t.exceptionSets) == 0
}

// PostCheckHandler builds the verdict handler that will classify the real
// outcome of the call:
//
//  1. If the table is empty, no specification governs this call; the baseline
//     is returned unchanged.
//  2. If any exception is expected, an expected-exception handler replaces
//     everything else.
//  3. Otherwise, if no property-guard was satisfied, the attempt is invalid
//     regardless of the real outcome.
//  4. Otherwise, recorded properties compose before the baseline.
//  5. Otherwise the baseline is returned unchanged.
func (t *ExpectedOutcomeTable) PostCheckHandler(baseline *check.Handler) *check.Handler {
	if t.isEmpty {
		return baseline
	}

	// Expected exceptions override guard expressions.
	if len(t.exceptionSets) > 0 {
		return check.ExpectedException(t.exceptionSets)
	}

	// Every guard failed and nothing expects an exception.
	if !t.hasSatisfiedGuardExpression {
		baseline = check.Invalid()
	}

	if len(t.postConditions) > 0 {
		return check.PostCondition(t.postConditions, baseline)
	}

	return baseline
}
