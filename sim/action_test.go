package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_DeltaTable(t *testing.T) {
	tests := []struct {
		action Action
		want   Cell
	}{
		{ActionUp, Cell{Row: -1, Col: 0}},
		{ActionDown, Cell{Row: 1, Col: 0}},
		{ActionLeft, Cell{Row: 0, Col: -1}},
		{ActionRight, Cell{Row: 0, Col: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			got, err := tt.action.Delta()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAction_EncodeDecodeStayInSync(t *testing.T) {
	for _, a := range AllActions() {
		d, err := a.Delta()
		require.NoError(t, err)
		back, ok := ActionForDelta(d)
		assert.True(t, ok)
		assert.Equal(t, a, back)
	}
}

func TestActionForDelta_RejectsNonUnitSteps(t *testing.T) {
	for _, d := range []Cell{{0, 0}, {1, 1}, {-1, 1}, {2, 0}, {0, -2}} {
		_, ok := ActionForDelta(d)
		assert.False(t, ok, "delta %v must not map to an action", d)
	}
}

func TestAction_Invalid(t *testing.T) {
	for _, v := range []int{-1, 4, 100} {
		_, err := Action(v).Delta()
		assert.True(t, errors.Is(err, ErrInvalidAction))
		_, err = ParseAction(v)
		assert.True(t, errors.Is(err, ErrInvalidAction))
		assert.False(t, Action(v).Valid())
	}
	a, err := ParseAction(3)
	require.NoError(t, err)
	assert.Equal(t, ActionRight, a)
	assert.Equal(t, "Action(7)", Action(7).String())
}
