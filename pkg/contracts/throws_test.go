package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type emptyQueueError struct{}

func (emptyQueueError) Error() string { return "empty queue" }

func TestCauseType(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"value error", emptyQueueError{}, "contracts.emptyQueueError"},
		{"pointer error matches value clause", &emptyQueueError{}, "contracts.emptyQueueError"},
		{"stdlib error", errors.New("x"), "errors.errorString"},
		{"wrapped keeps outer type", fmt.Errorf("ctx: %w", errors.New("x")), "fmt.wrapError"},
		{"panic string", "boom", "string"},
		{"nil", nil, "nil"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CauseType(tc.v))
		})
	}
}

func TestThrowsSet(t *testing.T) {
	set := ThrowsSet{
		{Type: "container.ErrEmpty", Comment: "dequeue on empty queue"},
		{Type: "container.ErrClosed"},
	}

	assert.True(t, set.Contains("container.ErrEmpty"))
	assert.False(t, set.Contains("container.ErrFull"))
	assert.False(t, set.IsEmpty())
	assert.True(t, ThrowsSet{}.IsEmpty())
	assert.Equal(t, []string{"container.ErrEmpty", "container.ErrClosed"}, set.Types())
	assert.Equal(t, "{container.ErrEmpty, container.ErrClosed}", set.String())
}

func TestThrowsClauseEqualityIgnoresComment(t *testing.T) {
	a := ThrowsClause{Type: "container.ErrEmpty", Comment: "one"}
	b := ThrowsClause{Type: "container.ErrEmpty", Comment: "two"}
	assert.True(t, a.Equal(b))
	assert.Equal(t, "container.ErrEmpty (one)", a.String())
	assert.Equal(t, "container.ErrEmpty", ThrowsClause{Type: "container.ErrEmpty"}.String())
}
