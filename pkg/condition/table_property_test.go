package condition

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/specfirst/veridict/pkg/check"
	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
)

// TestTableInvariants folds arbitrary row sequences and checks the state
// invariants hold in every reachable table.
func TestTableInvariants(t *testing.T) {
	compiler, err := expr.NewCompiler()
	require.NoError(t, err)
	prop1, err := compiler.Property("true")
	require.NoError(t, err)

	set := contracts.ThrowsSet{{Type: "container.ErrEmpty"}}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("table state follows its fold history", prop.ForAll(
		func(satisfied []bool, withProperty []bool, withThrows []bool) bool {
			n := len(satisfied)
			if len(withProperty) < n {
				n = len(withProperty)
			}
			if len(withThrows) < n {
				n = len(withThrows)
			}

			table := NewExpectedOutcomeTable()
			var anySatisfied bool
			var wantProps, wantSets int
			for i := 0; i < n; i++ {
				var p *expr.Property
				if withProperty[i] {
					p = prop1
				}
				var ts contracts.ThrowsSet
				if withThrows[i] {
					ts = set
				}
				table.Add(satisfied[i], p, ts)

				anySatisfied = anySatisfied || satisfied[i]
				if satisfied[i] && p != nil {
					wantProps++
				}
				if !ts.IsEmpty() {
					wantSets++
				}
			}

			if table.IsEmpty() != (n == 0) {
				return false
			}
			if table.HasSatisfiedGuardExpression() != anySatisfied {
				return false
			}
			if len(table.PostConditions()) != wantProps {
				return false
			}
			if len(table.ExceptionSets()) != wantSets {
				return false
			}

			wantInvalid := n > 0 && !anySatisfied && wantSets == 0
			return table.IsInvalidPrestate() == wantInvalid
		},
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("handler kind follows the precedence ladder", prop.ForAll(
		func(satisfied []bool, withProperty []bool, withThrows []bool) bool {
			n := len(satisfied)
			if len(withProperty) < n {
				n = len(withProperty)
			}
			if len(withThrows) < n {
				n = len(withThrows)
			}

			table := NewExpectedOutcomeTable()
			var anySatisfied bool
			var props, sets int
			for i := 0; i < n; i++ {
				var p *expr.Property
				if withProperty[i] {
					p = prop1
				}
				var ts contracts.ThrowsSet
				if withThrows[i] {
					ts = set
				}
				table.Add(satisfied[i], p, ts)

				anySatisfied = anySatisfied || satisfied[i]
				if satisfied[i] && p != nil {
					props++
				}
				if !ts.IsEmpty() {
					sets++
				}
			}

			base := check.DefaultBaseline(nil)
			handler := table.PostCheckHandler(base)

			switch {
			case n == 0:
				return handler == base
			case sets > 0:
				return handler.Kind() == check.KindExpectedException
			case !anySatisfied:
				return handler.Kind() == check.KindInvalid
			case props > 0:
				return handler.Kind() == check.KindPostCondition
			default:
				return handler == base
			}
		},
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
