// Package hierarchy merges inherited behavioral specifications into one
// immutable pair list before the condition core runs. The supertype and
// interface chain is resolved by an external collaborator; this package only
// walks the already-resolved chain linearly, instantiating type parameters so
// clauses written against a supertype's signature apply to the overriding
// operation.
package hierarchy

import (
	"fmt"
	"strings"
	"unicode"
)

// Substitution instantiates formal type parameters with concrete type names.
// It is applied to the type names in throws clauses of an inherited
// declaration; guard and property expressions refer to values, not types, and
// pass through unchanged.
type Substitution struct {
	params []string
	args   []string
}

// NewSubstitution pairs formal parameters with concrete arguments
// positionally.
func NewSubstitution(params, args []string) (Substitution, error) {
	if len(params) != len(args) {
		return Substitution{}, fmt.Errorf("hierarchy: %d parameters but %d arguments", len(params), len(args))
	}
	for i, p := range params {
		if p == "" || args[i] == "" {
			return Substitution{}, fmt.Errorf("hierarchy: empty name at position %d", i)
		}
	}
	return Substitution{
		params: append([]string(nil), params...),
		args:   append([]string(nil), args...),
	}, nil
}

// IsIdentity reports whether the substitution replaces nothing.
func (s Substitution) IsIdentity() bool { return len(s.params) == 0 }

// Apply rewrites every formal-parameter token inside a type name, e.g.
// "container.List<E>" with E→"int" becomes "container.List<int>". Only whole
// identifier tokens are replaced.
func (s Substitution) Apply(typeName string) string {
	if s.IsIdentity() || typeName == "" {
		return typeName
	}

	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		token := typeName[start:end]
		b.WriteString(s.replace(token))
		start = -1
	}

	for i, r := range typeName {
		if isIdentRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteRune(r)
	}
	flush(len(typeName))
	return b.String()
}

func (s Substitution) replace(token string) string {
	for i, p := range s.params {
		if token == p {
			return s.args[i]
		}
	}
	return token
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
