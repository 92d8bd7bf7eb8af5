package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfirst/veridict/pkg/check"
	"github.com/specfirst/veridict/pkg/contracts"
	"github.com/specfirst/veridict/pkg/expr"
)

func newProperty(t *testing.T, source string) *expr.Property {
	t.Helper()
	c, err := expr.NewCompiler()
	require.NoError(t, err)
	p, err := c.Property(source)
	require.NoError(t, err)
	return p
}

func baseline() *check.Handler {
	return check.DefaultBaseline(nil)
}

func TestEmptyTable(t *testing.T) {
	table := NewExpectedOutcomeTable()

	assert.True(t, table.IsEmpty())
	assert.False(t, table.IsInvalidPrestate(), "empty table is unspecified, not invalid")

	base := baseline()
	assert.Same(t, base, table.PostCheckHandler(base), "no specification governs the call")
}

func TestAddMarksNonEmptyEvenForNoOpRow(t *testing.T) {
	table := NewExpectedOutcomeTable()
	table.Add(false, nil, nil)

	assert.False(t, table.IsEmpty(), "a consulted specification must be visible")
	assert.False(t, table.HasSatisfiedGuardExpression())
	assert.Empty(t, table.PostConditions())
	assert.Empty(t, table.ExceptionSets())
	assert.True(t, table.IsInvalidPrestate())
}

func TestAddNoOpRowIsIdempotent(t *testing.T) {
	table := NewExpectedOutcomeTable()
	prop := newProperty(t, "result >= 0")

	table.Add(true, prop, nil)
	table.Add(false, nil, nil)
	table.Add(false, nil, nil)

	assert.False(t, table.IsEmpty())
	assert.True(t, table.HasSatisfiedGuardExpression())
	assert.Len(t, table.PostConditions(), 1)
	assert.Empty(t, table.ExceptionSets())
}

func TestSatisfiedPropertyGuard(t *testing.T) {
	table := NewExpectedOutcomeTable()
	prop := newProperty(t, "result >= 0")
	table.Add(true, prop, nil)

	assert.True(t, table.HasSatisfiedGuardExpression())
	require.Len(t, table.PostConditions(), 1)
	assert.False(t, table.IsInvalidPrestate())

	handler := table.PostCheckHandler(baseline())
	assert.Equal(t, check.KindPostCondition, handler.Kind())
}

func TestSatisfiedGuardWithoutPropertyKeepsBaseline(t *testing.T) {
	table := NewExpectedOutcomeTable()
	table.Add(true, nil, nil)

	assert.True(t, table.HasSatisfiedGuardExpression())
	assert.Empty(t, table.PostConditions())

	base := baseline()
	assert.Same(t, base, table.PostCheckHandler(base), "guard satisfied, nothing further asserted")
}

func TestUnsatisfiedGuardsAreInvalid(t *testing.T) {
	table := NewExpectedOutcomeTable()
	table.Add(false, newProperty(t, "result > 0"), nil)

	assert.True(t, table.IsInvalidPrestate())

	handler := table.PostCheckHandler(baseline())
	assert.Equal(t, check.KindInvalid, handler.Kind())
}

func TestExpectedExceptionOverridesEverything(t *testing.T) {
	set := contracts.ThrowsSet{{Type: "container.ErrEmpty"}}

	tests := []struct {
		name string
		fold func(*ExpectedOutcomeTable)
	}{
		{
			name: "throws only",
			fold: func(tb *ExpectedOutcomeTable) {
				tb.Add(false, nil, set)
			},
		},
		{
			name: "throws plus satisfied property guard",
			fold: func(tb *ExpectedOutcomeTable) {
				tb.Add(true, newProperty(t, "result >= 0"), nil)
				tb.Add(false, nil, set)
			},
		},
		{
			name: "throws plus unsatisfied property guard",
			fold: func(tb *ExpectedOutcomeTable) {
				tb.Add(false, nil, nil)
				tb.Add(false, nil, set)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewExpectedOutcomeTable()
			tt.fold(table)

			assert.False(t, table.IsInvalidPrestate(), "an expected exception is never invalid")

			handler := table.PostCheckHandler(baseline())
			require.Equal(t, check.KindExpectedException, handler.Kind())
		})
	}
}

func TestMultipleExceptionSetsAreAllRecorded(t *testing.T) {
	setA := contracts.ThrowsSet{{Type: "container.ErrEmpty"}}
	setB := contracts.ThrowsSet{{Type: "container.ErrClosed"}}

	table := NewExpectedOutcomeTable()
	table.Add(false, nil, setA)
	table.Add(false, nil, setB)

	handler := table.PostCheckHandler(baseline())
	require.Equal(t, check.KindExpectedException, handler.Kind())
	require.Len(t, handler.ExpectedSets(), 2)
	assert.Equal(t, setA, handler.ExpectedSets()[0])
	assert.Equal(t, setB, handler.ExpectedSets()[1])
}

func TestPostConditionsPreserveFoldOrder(t *testing.T) {
	first := newProperty(t, "result >= 0")
	second := newProperty(t, "result <= 100")

	table := NewExpectedOutcomeTable()
	table.Add(true, first, nil)
	table.Add(true, second, nil)

	props := table.PostConditions()
	require.Len(t, props, 2)
	assert.Same(t, first, props[0])
	assert.Same(t, second, props[1])
}
