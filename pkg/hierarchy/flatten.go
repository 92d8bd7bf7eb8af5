package hierarchy

import (
	"fmt"

	"github.com/specfirst/veridict/pkg/condition"
	"github.com/specfirst/veridict/pkg/contracts"
)

// Declaration is the specification attached to one declaring site of an
// operation: the operation itself or one of the supertypes/interfaces it
// overrides.
type Declaration struct {
	// Site names the declaring type, e.g. "container.Queue".
	Site string

	// TypeParameters are the declaring site's formal type parameter names,
	// in declaration order. Empty for non-generic sites.
	TypeParameters []string

	PropertyPairs []condition.GuardPropertyPair
	ThrowsPairs   []condition.GuardThrowsPair
}

// ChainResolver resolves, for an overriding operation, the declaration chain
// the inherited pairs are gathered from: the operation's own declaration
// first, then each overridden declaration, most-derived first.
type ChainResolver interface {
	Chain(operation string) ([]Declaration, error)
}

// Flatten walks the resolved chain once and merges every declaration's pairs
// into one immutable catalog, applying the declaration's substitution (keyed
// by site) to inherited throws-clause types. Order is preserved: own pairs
// first, then inherited ones in chain order, so the condition core afterwards
// performs only linear folding.
func Flatten(operation string, resolver ChainResolver, subs map[string]Substitution) (*condition.OperationConditions, error) {
	chain, err := resolver.Chain(operation)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: resolving chain for %s: %w", operation, err)
	}

	var props []condition.GuardPropertyPair
	var throws []condition.GuardThrowsPair

	for _, decl := range chain {
		sub, hasSub := subs[decl.Site]
		if len(decl.TypeParameters) > 0 && !hasSub {
			return nil, fmt.Errorf("hierarchy: %s: no substitution for generic site %s", operation, decl.Site)
		}

		props = append(props, decl.PropertyPairs...)
		for _, tp := range decl.ThrowsPairs {
			throws = append(throws, condition.GuardThrowsPair{
				Guard:  tp.Guard,
				Throws: substituteSet(sub, tp.Throws),
			})
		}
	}

	return condition.New(operation, props, throws)
}

func substituteSet(sub Substitution, set contracts.ThrowsSet) contracts.ThrowsSet {
	if sub.IsIdentity() {
		return set
	}
	out := make(contracts.ThrowsSet, len(set))
	for i, c := range set {
		out[i] = contracts.ThrowsClause{Type: sub.Apply(c.Type), Comment: c.Comment}
	}
	return out
}
