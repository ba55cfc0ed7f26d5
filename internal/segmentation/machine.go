package segmentation

import (
	"fmt"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// tripCounter assigns trip ids sequentially across all users, in emission
// order, starting at the configured offset.
type tripCounter struct {
	next int64
}

func (c *tripCounter) take() int64 {
	id := c.next
	c.next++
	return id
}

// userMachine is the per-user segmentation state machine. It scans one user's
// event timeline in time order and accumulates trips and linkage decisions.
//
// Two states: awaiting-trip (inTrip=false), where activities move the origin
// forward, and in-trip (inTrip=true), where events accumulate on the stack
// until a destination activity or a recording gap closes the trip.
type userMachine struct {
	userID  int64
	gapSecs int64
	counter *tripCounter

	inTrip bool
	origin endpoint
	stack  []event
	pos    int // index of the current event within the user timeline, for error context

	trips []models.Trip
	links []linkage
}

func newUserMachine(userID, gapSecs int64, counter *tripCounter) *userMachine {
	return &userMachine{
		userID:  userID,
		gapSecs: gapSecs,
		counter: counter,
		origin:  unknownEndpoint(userID),
	}
}

// gapAfter reports whether the silence between ev and the user's next event
// exceeds the gap threshold. The last event of a user never has a gap; the
// end-of-timeline flush handles it instead.
func (m *userMachine) gapAfter(ev event) bool {
	return ev.hasNext && ev.nextStartedAt-ev.finishedAt > m.gapSecs
}

func (m *userMachine) stackHasTripleg() bool {
	for _, ev := range m.stack {
		if ev.kind == kindTripleg {
			return true
		}
	}
	return false
}

// step processes one event. i is the event's index within the user timeline.
func (m *userMachine) step(i int, ev event) error {
	m.pos = i

	if !m.inTrip {
		// Consecutive activities collapse to the last one
		if ev.isActivity && ev.nextIsActivity {
			return nil
		}
		if ev.isActivity {
			// Last activity before movement starts: this is the origin
			m.origin = knownEndpoint(ev)
			m.inTrip = true
			return nil
		}
		// Non-activity with no preceding activity: trip starts here,
		// fall through and handle the same event in-trip
		m.inTrip = true
	}

	if ev.isActivity {
		if !m.stackHasTripleg() {
			// Stays only between two activities never form a trip;
			// the later activity becomes the new origin
			m.origin = knownEndpoint(ev)
			m.stack = nil
			return nil
		}
		dest := knownEndpoint(ev)
		if err := m.emit(dest); err != nil {
			return err
		}
		if m.gapAfter(ev) {
			// Gap right after the destination: next trip starts unobserved
			m.origin = unknownEndpoint(m.userID)
		} else {
			m.origin = dest
		}
		m.stack = nil
		m.inTrip = false
		return nil
	}

	if m.gapAfter(ev) {
		// Recording gap mid-trip: close the trip with an unknown destination
		m.stack = append(m.stack, ev)
		if !m.stackHasTripleg() {
			m.origin = unknownEndpoint(m.userID)
			m.stack = nil
			return nil
		}
		if err := m.emit(unknownEndpoint(m.userID)); err != nil {
			return err
		}
		m.origin = unknownEndpoint(m.userID)
		m.stack = nil
		return nil
	}

	m.stack = append(m.stack, ev)
	return nil
}

// finish flushes the accumulation at the end of the user's timeline. A
// trailing stack with at least one tripleg becomes a final trip with an
// unknown destination; anything else is discarded.
func (m *userMachine) finish() error {
	if len(m.stack) == 0 || !m.stackHasTripleg() {
		m.stack = nil
		return nil
	}
	if err := m.emit(unknownEndpoint(m.userID)); err != nil {
		return err
	}
	m.stack = nil
	return nil
}

// emit turns the current stack into a trip bounded by origin and dest, and
// records the linkage decisions for every participant. The consistency checks
// guard against state machine defects; any failure aborts the run.
func (m *userMachine) emit(dest endpoint) error {
	first := m.stack[0]
	last := m.stack[len(m.stack)-1]

	if first.isActivity {
		return fmt.Errorf("user %d event %d: trip starts with an activity (%s %d)",
			m.userID, m.pos, first.kind, first.id)
	}
	if !m.origin.isActivity || !dest.isActivity {
		return fmt.Errorf("user %d event %d: trip endpoint is not an activity", m.userID, m.pos)
	}
	if m.origin.userID != last.userID || dest.userID != last.userID {
		return fmt.Errorf("user %d event %d: trip endpoint belongs to another user", m.userID, m.pos)
	}

	id := m.counter.take()
	m.trips = append(m.trips, models.Trip{
		ID:                     id,
		UserID:                 m.userID,
		StartedAt:              first.startedAt,
		FinishedAt:             last.finishedAt,
		OriginStaypointID:      m.origin.idRef(),
		DestinationStaypointID: dest.idRef(),
	})

	for _, ev := range m.stack {
		if ev.kind == kindTripleg {
			m.links = append(m.links, linkage{tripID: id, entityID: ev.id, kind: linkTriplegMember})
		} else {
			m.links = append(m.links, linkage{tripID: id, entityID: ev.id, kind: linkStaypointMember})
		}
	}
	if sid, ok := m.origin.staypointID(); ok {
		m.links = append(m.links, linkage{tripID: id, entityID: sid, kind: linkOriginNext})
	}
	if sid, ok := dest.staypointID(); ok {
		m.links = append(m.links, linkage{tripID: id, entityID: sid, kind: linkDestinationPrev})
	}

	return nil
}
