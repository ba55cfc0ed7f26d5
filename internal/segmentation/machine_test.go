package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineActivityBecomesOrigin(t *testing.T) {
	m := newUserMachine(1, 900, &tripCounter{})
	require.False(t, m.inTrip)
	assert.False(t, m.origin.known)

	ev := event{id: 1, userID: 1, isActivity: true, startedAt: at(8, 0), finishedAt: at(8, 5)}
	require.NoError(t, m.step(0, ev))

	assert.True(t, m.inTrip)
	sid, ok := m.origin.staypointID()
	require.True(t, ok)
	assert.Equal(t, int64(1), sid)
	assert.Empty(t, m.stack)
}

func TestMachineSkipsWhileNextIsActivity(t *testing.T) {
	m := newUserMachine(1, 900, &tripCounter{})

	ev := event{id: 1, userID: 1, isActivity: true, hasNext: true, nextIsActivity: true}
	require.NoError(t, m.step(0, ev))

	assert.False(t, m.inTrip)
	assert.False(t, m.origin.known)
}

func TestMachineNonActivityFallsThroughToStack(t *testing.T) {
	m := newUserMachine(1, 900, &tripCounter{})

	ev := event{id: 10, userID: 1, kind: kindTripleg, startedAt: at(8, 0), finishedAt: at(8, 10)}
	require.NoError(t, m.step(0, ev))

	assert.True(t, m.inTrip)
	require.Len(t, m.stack, 1)
	assert.Equal(t, int64(10), m.stack[0].id)
}

func TestMachineEmitRejectsActivityFirstElement(t *testing.T) {
	// A stack whose first element is an activity means the transitions are
	// broken; emit must fail rather than produce a malformed trip.
	m := newUserMachine(1, 900, &tripCounter{})
	m.origin = unknownEndpoint(1)
	m.stack = []event{{id: 5, userID: 1, kind: kindStaypoint, isActivity: true}}

	err := m.emit(unknownEndpoint(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starts with an activity")
}

func TestMachineEmitRejectsForeignEndpoint(t *testing.T) {
	m := newUserMachine(1, 900, &tripCounter{})
	m.origin = knownEndpoint(event{id: 5, userID: 2, isActivity: true})
	m.stack = []event{{id: 10, userID: 1, kind: kindTripleg}}

	err := m.emit(unknownEndpoint(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another user")
}

func TestMachineFinishDiscardsStaysOnlyStack(t *testing.T) {
	counter := &tripCounter{}
	m := newUserMachine(1, 900, counter)
	m.inTrip = true
	m.stack = []event{{id: 5, userID: 1, kind: kindStaypoint}}

	require.NoError(t, m.finish())
	assert.Empty(t, m.trips)
	assert.Equal(t, int64(0), counter.next)
}
