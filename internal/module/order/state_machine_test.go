package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineCanTransition(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCanceled, true},
		{StatusFailed, StatusPending, true},
		{StatusFailed, StatusPaid, false},
		{StatusPaid, StatusFailed, false},
		{StatusPaid, StatusPending, false},
		{StatusCanceled, StatusPending, false},
		{Status("unknown"), StatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sm.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStateMachineTransition(t *testing.T) {
	sm := NewStateMachine()

	o := &Order{OrderNo: "00001", Status: StatusPending}
	require.NoError(t, sm.Transition(o, StatusFailed))
	assert.Equal(t, StatusFailed, o.Status)

	// Reopen after failure
	require.NoError(t, sm.Transition(o, StatusPending))
	assert.Equal(t, StatusPending, o.Status)
}

func TestStateMachineTransitionInvalid(t *testing.T) {
	sm := NewStateMachine()

	o := &Order{OrderNo: "00001", Status: StatusPaid}
	err := sm.Transition(o, StatusFailed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPaid, o.Status)
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := NewStateMachine()

	assert.ElementsMatch(t, []Status{StatusPaid, StatusFailed, StatusCanceled}, sm.GetAllowedTransitions(StatusPending))
	assert.Empty(t, sm.GetAllowedTransitions(StatusPaid))
	assert.Empty(t, sm.GetAllowedTransitions(Status("unknown")))
}
