package contracts

import (
	"fmt"
	"reflect"
	"strings"
)

// ThrowsClause identifies one cause type a specification permits or requires
// a call to raise, plus the justification from the specification document.
// Two clauses are equal iff their types are equal; the comment is
// documentation only.
type ThrowsClause struct {
	Type    string `json:"type" yaml:"type"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Equal reports whether the clauses name the same cause type.
func (c ThrowsClause) Equal(o ThrowsClause) bool {
	return c.Type == o.Type
}

func (c ThrowsClause) String() string {
	if c.Comment == "" {
		return c.Type
	}
	return fmt.Sprintf("%s (%s)", c.Type, c.Comment)
}

// ThrowsSet is a set of expected cause types attached to one throws-guard.
// Membership is by type name.
type ThrowsSet []ThrowsClause

// Contains reports whether the set has a clause for the given cause type.
func (s ThrowsSet) Contains(causeType string) bool {
	for _, c := range s {
		if c.Type == causeType {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set has no clauses.
func (s ThrowsSet) IsEmpty() bool { return len(s) == 0 }

// Types returns the cause type names in declaration order.
func (s ThrowsSet) Types() []string {
	types := make([]string, len(s))
	for i, c := range s {
		types[i] = c.Type
	}
	return types
}

func (s ThrowsSet) String() string {
	return "{" + strings.Join(s.Types(), ", ") + "}"
}

// CauseType returns the canonical type name of a raised value, used for
// membership checks against throws clauses. Pointer indirection is stripped
// so that a raised *pkg.FooError matches a clause written as "pkg.FooError".
func CauseType(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
