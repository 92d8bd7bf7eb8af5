// Package condition implements the behavioral-contract core: the immutable
// per-operation catalog of guard/property and guard/throws pairs, the
// prestate evaluation of every guard, and the outcome table that folds those
// results into one verdict handler per invocation attempt.
package condition

import (
	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
)

// GuardPropertyPair states: if the guard holds in the prestate, the property
// must hold in the poststate. A pair with a nil Property is a bare
// precondition; its guard still participates in invalidity detection.
type GuardPropertyPair struct {
	Guard    *expr.Guard
	Property *expr.Property
}

// GuardThrowsPair states: if the guard holds in the prestate, the call must
// raise one member of the throws set. The set is non-empty by construction.
type GuardThrowsPair struct {
	Guard  *expr.Guard
	Throws contracts.ThrowsSet
}
