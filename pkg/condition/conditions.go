package condition

import (
	"fmt"

	"github.com/specfirst/veridict/pkg/canonicalize"
	"github.com/specfirst/veridict/pkg/contracts"
)

// OperationConditions is the immutable, ordered collection of specification
// pairs attached to one operation, already merged across every supertype and
// interface declaration the operation overrides. It is built once and shared
// read-only across concurrently evaluated attempts.
type OperationConditions struct {
	operation     string
	propertyPairs []GuardPropertyPair
	throwsPairs   []GuardThrowsPair
	hash          string
}

// New builds the catalog for one operation. The pair slices are copied;
// callers keep no write access. Throws pairs with empty sets are rejected.
func New(operation string, props []GuardPropertyPair, throws []GuardThrowsPair) (*OperationConditions, error) {
	for i, p := range throws {
		if p.Throws.IsEmpty() {
			return nil, fmt.Errorf("condition: %s: throws pair %d has an empty set", operation, i)
		}
	}

	oc := &OperationConditions{
		operation:     operation,
		propertyPairs: append([]GuardPropertyPair(nil), props...),
		throwsPairs:   append([]GuardThrowsPair(nil), throws...),
	}
	oc.hash = contentHash(oc)
	return oc, nil
}

// Operation returns the qualified name of the operation the catalog governs.
func (oc *OperationConditions) Operation() string { return oc.operation }

// IsEmpty reports whether the catalog carries no pairs at all.
func (oc *OperationConditions) IsEmpty() bool {
	return len(oc.propertyPairs) == 0 && len(oc.throwsPairs) == 0
}

// Len returns the total number of pairs.
func (oc *OperationConditions) Len() int {
	return len(oc.propertyPairs) + len(oc.throwsPairs)
}

// Hash returns the content address of the catalog, derived from the guard,
// property, and throws-clause sources in declaration order.
func (oc *OperationConditions) Hash() string { return oc.hash }

// CheckPrestate evaluates every guard of every pair against the concrete
// prestate of one invocation and folds each result into a fresh outcome
// table. A guard evaluation failure aborts the attempt: the error (an
// *expr.EvalError) propagates and the table is discarded.
//
// Both kinds of guard fold a row even when unsatisfied: a-priori invalidity
// is defined against specifications having been consulted at all.
func (oc *OperationConditions) CheckPrestate(pre contracts.Prestate) (*ExpectedOutcomeTable, error) {
	activation := pre.Activation()
	table := NewExpectedOutcomeTable()

	for _, pair := range oc.propertyPairs {
		satisfied, err := pair.Guard.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("condition: %s: %w", oc.operation, err)
		}
		table.Add(satisfied, pair.Property, nil)
	}

	for _, pair := range oc.throwsPairs {
		satisfied, err := pair.Guard.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("condition: %s: %w", oc.operation, err)
		}
		// The throws-guard is its own condition: its satisfaction is filtered
		// here and never reported through the guardSatisfied flag, which
		// tracks property-guards only.
		if satisfied {
			table.Add(false, nil, pair.Throws)
		} else {
			table.Add(false, nil, nil)
		}
	}

	return table, nil
}

// contentHash derives the catalog's content address from its declaration
// order and sources.
func contentHash(oc *OperationConditions) string {
	type throwsRow struct {
		Guard  string              `json:"guard"`
		Throws contracts.ThrowsSet `json:"throws"`
	}
	type propertyRow struct {
		Guard    string `json:"guard"`
		Property string `json:"property,omitempty"`
	}
	doc := struct {
		Operation string        `json:"operation"`
		Props     []propertyRow `json:"post"`
		Throws    []throwsRow   `json:"throws"`
	}{Operation: oc.operation}

	for _, p := range oc.propertyPairs {
		row := propertyRow{Guard: p.Guard.Source()}
		if p.Property != nil {
			row.Property = p.Property.Source()
		}
		doc.Props = append(doc.Props, row)
	}
	for _, p := range oc.throwsPairs {
		doc.Throws = append(doc.Throws, throwsRow{Guard: p.Guard.Source(), Throws: p.Throws})
	}

	hash, err := canonicalize.CanonicalHash(doc)
	if err != nil {
		// The document is built from plain strings; canonicalization cannot
		// fail on it. Keep a recognizable sentinel rather than pretend.
		return "sha256:unaddressable"
	}
	return hash
}
