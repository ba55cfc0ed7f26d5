package segmentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// 2025-01-06 08:00 UTC, the base of most fixtures
const base = int64(1736150400)

func at(h, m int) int64 {
	return base + int64(h-8)*3600 + int64(m)*60
}

func staypoint(id, userID int64, startedAt, finishedAt int64, activity bool) models.Staypoint {
	return models.Staypoint{ID: id, UserID: userID, StartedAt: startedAt, FinishedAt: finishedAt, Activity: activity}
}

func tripleg(id, userID int64, startedAt, finishedAt int64) models.Tripleg {
	return models.Tripleg{ID: id, UserID: userID, StartedAt: startedAt, FinishedAt: finishedAt}
}

func findStaypoint(t *testing.T, sps []models.Staypoint, id int64) models.Staypoint {
	t.Helper()
	for _, sp := range sps {
		if sp.ID == id {
			return sp
		}
	}
	t.Fatalf("staypoint %d not in result", id)
	return models.Staypoint{}
}

func findTripleg(t *testing.T, tls []models.Tripleg, id int64) models.Tripleg {
	t.Helper()
	for _, tl := range tls {
		if tl.ID == id {
			return tl
		}
	}
	t.Fatalf("tripleg %d not in result", id)
	return models.Tripleg{}
}

func TestGenerateTripsBasicScenario(t *testing.T) {
	// S1 (activity, 08:00-08:05), M1 (08:05-08:20), S2 (activity, 08:20-08:25)
	staypoints := []models.Staypoint{
		staypoint(1, 7, at(8, 0), at(8, 5), true),
		staypoint(2, 7, at(8, 20), at(8, 25), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 7, at(8, 5), at(8, 20)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{GapThreshold: 15 * time.Minute})
	require.NoError(t, err)

	require.Len(t, res.Trips, 1)
	trip := res.Trips[0]
	assert.Equal(t, int64(0), trip.ID)
	assert.Equal(t, int64(7), trip.UserID)
	assert.Equal(t, at(8, 5), trip.StartedAt)
	assert.Equal(t, at(8, 20), trip.FinishedAt)
	require.NotNil(t, trip.OriginStaypointID)
	assert.Equal(t, int64(1), *trip.OriginStaypointID)
	require.NotNil(t, trip.DestinationStaypointID)
	assert.Equal(t, int64(2), *trip.DestinationStaypointID)

	m1 := findTripleg(t, res.Triplegs, 10)
	require.NotNil(t, m1.TripID)
	assert.Equal(t, trip.ID, *m1.TripID)

	s1 := findStaypoint(t, res.Staypoints, 1)
	require.NotNil(t, s1.NextTripID)
	assert.Equal(t, trip.ID, *s1.NextTripID)
	assert.Nil(t, s1.PrevTripID)
	assert.Nil(t, s1.TripID)

	s2 := findStaypoint(t, res.Staypoints, 2)
	require.NotNil(t, s2.PrevTripID)
	assert.Equal(t, trip.ID, *s2.PrevTripID)
	assert.Nil(t, s2.NextTripID)
}

func TestGenerateTripsNoTripWithoutTripleg(t *testing.T) {
	// Two activities with only an incidental stay between them: no trip,
	// the second activity simply becomes the new origin.
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 6), at(8, 10), false),
		staypoint(3, 1, at(8, 11), at(8, 20), true),
	}

	res, err := GenerateTrips(staypoints, nil, Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Trips)
	for _, sp := range res.Staypoints {
		assert.Nil(t, sp.TripID, "staypoint %d", sp.ID)
		assert.Nil(t, sp.PrevTripID, "staypoint %d", sp.ID)
		assert.Nil(t, sp.NextTripID, "staypoint %d", sp.ID)
	}
}

func TestGenerateTripsIDMonotonicity(t *testing.T) {
	// Two users, two trips each; ids must count up from the offset with no
	// gaps, user 1 first (order of first appearance in the merged sort).
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 20), at(8, 30), true),
		staypoint(3, 1, at(8, 45), at(8, 50), true),
		staypoint(4, 2, at(8, 0), at(8, 5), true),
		staypoint(5, 2, at(8, 20), at(8, 30), true),
		staypoint(6, 2, at(8, 45), at(8, 50), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 1, at(8, 30), at(8, 45)),
		tripleg(12, 2, at(8, 5), at(8, 20)),
		tripleg(13, 2, at(8, 30), at(8, 45)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{IDOffset: 100})
	require.NoError(t, err)

	require.Len(t, res.Trips, 4)
	for i, trip := range res.Trips {
		assert.Equal(t, int64(100+i), trip.ID)
	}
	assert.Equal(t, int64(1), res.Trips[0].UserID)
	assert.Equal(t, int64(1), res.Trips[1].UserID)
	assert.Equal(t, int64(2), res.Trips[2].UserID)
	assert.Equal(t, int64(2), res.Trips[3].UserID)
}

func TestGenerateTripsGapSplitting(t *testing.T) {
	// Two triplegs separated by a 30 minute silence with no activity
	// between them: two trips, unknown destination then unknown origin.
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 1, at(8, 50), at(9, 5)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{GapThreshold: 15 * time.Minute})
	require.NoError(t, err)

	require.Len(t, res.Trips, 2)

	first := res.Trips[0]
	require.NotNil(t, first.OriginStaypointID)
	assert.Equal(t, int64(1), *first.OriginStaypointID)
	assert.Nil(t, first.DestinationStaypointID)
	assert.Equal(t, at(8, 5), first.StartedAt)
	assert.Equal(t, at(8, 20), first.FinishedAt)

	second := res.Trips[1]
	assert.Nil(t, second.OriginStaypointID)
	assert.Nil(t, second.DestinationStaypointID)
	assert.Equal(t, at(8, 50), second.StartedAt)
	assert.Equal(t, at(9, 5), second.FinishedAt)

	assert.Equal(t, first.ID, *findTripleg(t, res.Triplegs, 10).TripID)
	assert.Equal(t, second.ID, *findTripleg(t, res.Triplegs, 11).TripID)
}

func TestGenerateTripsConsecutiveActivityCollapse(t *testing.T) {
	// Activity A immediately followed by activity B, then movement, then
	// activity C: the trip's origin is B, never A.
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),  // A
		staypoint(2, 1, at(8, 5), at(8, 10), true), // B
		staypoint(3, 1, at(8, 25), at(8, 30), true), // C
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 10), at(8, 25)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{})
	require.NoError(t, err)

	require.Len(t, res.Trips, 1)
	require.NotNil(t, res.Trips[0].OriginStaypointID)
	assert.Equal(t, int64(2), *res.Trips[0].OriginStaypointID)

	a := findStaypoint(t, res.Staypoints, 1)
	assert.Nil(t, a.NextTripID)
	b := findStaypoint(t, res.Staypoints, 2)
	require.NotNil(t, b.NextTripID)
	assert.Equal(t, res.Trips[0].ID, *b.NextTripID)
}

func TestGenerateTripsEndOfSequence(t *testing.T) {
	// Timeline ends mid-movement: final trip has an unknown destination
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{})
	require.NoError(t, err)

	require.Len(t, res.Trips, 1)
	trip := res.Trips[0]
	require.NotNil(t, trip.OriginStaypointID)
	assert.Equal(t, int64(1), *trip.OriginStaypointID)
	assert.Nil(t, trip.DestinationStaypointID)
	assert.Equal(t, at(8, 5), trip.StartedAt)
	assert.Equal(t, at(8, 20), trip.FinishedAt)
}

func TestGenerateTripsIncidentalStopsInsideTrip(t *testing.T) {
	// A short non-activity stop between two triplegs stays inside the trip
	// and receives the trip id.
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 15), at(8, 20), false), // waiting at a platform
		staypoint(3, 1, at(8, 35), at(8, 40), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 15)),
		tripleg(11, 1, at(8, 20), at(8, 35)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{})
	require.NoError(t, err)

	require.Len(t, res.Trips, 1)
	trip := res.Trips[0]
	assert.Equal(t, at(8, 5), trip.StartedAt)
	assert.Equal(t, at(8, 35), trip.FinishedAt)

	stop := findStaypoint(t, res.Staypoints, 2)
	require.NotNil(t, stop.TripID)
	assert.Equal(t, trip.ID, *stop.TripID)
	assert.Nil(t, stop.PrevTripID)
	assert.Nil(t, stop.NextTripID)

	assert.Equal(t, trip.ID, *findTripleg(t, res.Triplegs, 10).TripID)
	assert.Equal(t, trip.ID, *findTripleg(t, res.Triplegs, 11).TripID)
}

func TestGenerateTripsGapAfterDestination(t *testing.T) {
	// A long silence right after a trip's destination makes the next
	// trip's origin unknown instead of the just-closed destination.
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 20), at(8, 25), true),
		staypoint(3, 1, at(9, 30), at(9, 35), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 1, at(9, 15), at(9, 30)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{GapThreshold: 15 * time.Minute})
	require.NoError(t, err)

	require.Len(t, res.Trips, 2)
	assert.Equal(t, int64(2), *res.Trips[0].DestinationStaypointID)
	assert.Nil(t, res.Trips[1].OriginStaypointID)
	assert.Equal(t, int64(3), *res.Trips[1].DestinationStaypointID)
}

func TestGenerateTripsStaysOnlyStackDiscardedAtGap(t *testing.T) {
	// A gap while the stack holds only stays discards the stack and forgets
	// the origin; the next boundary still closes a trip, with unknown origin.
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 6), at(8, 10), false),
		staypoint(3, 1, at(9, 20), at(9, 25), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(9, 0), at(9, 20)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{GapThreshold: 15 * time.Minute})
	require.NoError(t, err)

	require.Len(t, res.Trips, 1)
	trip := res.Trips[0]
	assert.Nil(t, trip.OriginStaypointID)
	require.NotNil(t, trip.DestinationStaypointID)
	assert.Equal(t, int64(3), *trip.DestinationStaypointID)
	assert.Equal(t, at(9, 0), trip.StartedAt)

	// The discarded stay keeps no linkage, and the stale origin gets none
	assert.Nil(t, findStaypoint(t, res.Staypoints, 1).NextTripID)
	assert.Nil(t, findStaypoint(t, res.Staypoints, 2).TripID)
}

func TestGenerateTripsLinkageCompleteness(t *testing.T) {
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 20), at(8, 25), true),
		staypoint(3, 2, at(8, 0), at(8, 5), true),
		staypoint(4, 2, at(8, 20), at(8, 25), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 2, at(8, 5), at(8, 20)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{})
	require.NoError(t, err)
	require.Len(t, res.Trips, 2)

	tripsByID := make(map[int64]models.Trip)
	for _, trip := range res.Trips {
		tripsByID[trip.ID] = trip
	}

	// Every assigned tripleg points at exactly one existing trip of the
	// same user
	for _, tl := range res.Triplegs {
		require.NotNil(t, tl.TripID, "tripleg %d", tl.ID)
		trip, ok := tripsByID[*tl.TripID]
		require.True(t, ok)
		assert.Equal(t, tl.UserID, trip.UserID)
	}

	// Every boundary staypoint is the recorded endpoint of its trip
	for _, sp := range res.Staypoints {
		if sp.NextTripID != nil {
			trip := tripsByID[*sp.NextTripID]
			require.NotNil(t, trip.OriginStaypointID)
			assert.Equal(t, sp.ID, *trip.OriginStaypointID)
		}
		if sp.PrevTripID != nil {
			trip := tripsByID[*sp.PrevTripID]
			require.NotNil(t, trip.DestinationStaypointID)
			assert.Equal(t, sp.ID, *trip.DestinationStaypointID)
		}
	}
}

func TestGenerateTripsIdempotent(t *testing.T) {
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 20), at(8, 25), true),
		staypoint(3, 1, at(9, 40), at(9, 45), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 1, at(8, 25), at(8, 40)),
		tripleg(12, 1, at(9, 25), at(9, 40)),
	}

	opts := Options{GapThreshold: 15 * time.Minute, IDOffset: 5}
	first, err := GenerateTrips(staypoints, triplegs, opts)
	require.NoError(t, err)
	second, err := GenerateTrips(staypoints, triplegs, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Trips, second.Trips)
	assert.Equal(t, first.Staypoints, second.Staypoints)
	assert.Equal(t, first.Triplegs, second.Triplegs)
}

func TestGenerateTripsDoesNotMutateInputs(t *testing.T) {
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 20), at(8, 25), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
	}

	_, err := GenerateTrips(staypoints, triplegs, Options{})
	require.NoError(t, err)

	for _, sp := range staypoints {
		assert.Nil(t, sp.TripID)
		assert.Nil(t, sp.PrevTripID)
		assert.Nil(t, sp.NextTripID)
	}
	assert.Nil(t, triplegs[0].TripID)
}

func TestGenerateTripsUserBoundary(t *testing.T) {
	// User 1's timeline ends mid-movement and user 2 starts right after in
	// the merged sort; lookahead must not leak across the boundary.
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 2, at(8, 21), at(8, 26), true),
		staypoint(3, 2, at(8, 45), at(8, 50), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 2, at(8, 26), at(8, 45)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{GapThreshold: 15 * time.Minute})
	require.NoError(t, err)

	require.Len(t, res.Trips, 2)

	// User 1: trailing movement flushes with unknown destination
	assert.Equal(t, int64(1), res.Trips[0].UserID)
	assert.Nil(t, res.Trips[0].DestinationStaypointID)

	// User 2 starts fresh with its own origin
	assert.Equal(t, int64(2), res.Trips[1].UserID)
	require.NotNil(t, res.Trips[1].OriginStaypointID)
	assert.Equal(t, int64(2), *res.Trips[1].OriginStaypointID)
}

func TestGenerateTripsProgressCallback(t *testing.T) {
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 20), at(8, 25), true),
		staypoint(3, 2, at(8, 0), at(8, 5), true),
		staypoint(4, 2, at(8, 20), at(8, 25), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 2, at(8, 5), at(8, 20)),
	}

	var reported []int
	_, err := GenerateTrips(staypoints, triplegs, Options{
		Progress: func(n int) { reported = append(reported, n) },
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, reported)
}

func TestGenerateTripsEmptyInput(t *testing.T) {
	res, err := GenerateTrips(nil, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Trips)
	assert.Empty(t, res.Staypoints)
	assert.Empty(t, res.Triplegs)
}

func TestGenerateTripsDefaultGapThreshold(t *testing.T) {
	// 14 minutes of silence is under the default threshold: one trip
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 0), at(8, 5), true),
		staypoint(2, 1, at(8, 49), at(8, 55), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
		tripleg(11, 1, at(8, 34), at(8, 49)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{})
	require.NoError(t, err)
	require.Len(t, res.Trips, 1)
	assert.Equal(t, at(8, 5), res.Trips[0].StartedAt)
	assert.Equal(t, at(8, 49), res.Trips[0].FinishedAt)
}

func TestGenerateTripsMovementBeforeFirstActivity(t *testing.T) {
	// Movement before any recorded activity: trip with unknown origin
	staypoints := []models.Staypoint{
		staypoint(1, 1, at(8, 20), at(8, 25), true),
	}
	triplegs := []models.Tripleg{
		tripleg(10, 1, at(8, 5), at(8, 20)),
	}

	res, err := GenerateTrips(staypoints, triplegs, Options{})
	require.NoError(t, err)

	require.Len(t, res.Trips, 1)
	assert.Nil(t, res.Trips[0].OriginStaypointID)
	require.NotNil(t, res.Trips[0].DestinationStaypointID)
	assert.Equal(t, int64(1), *res.Trips[0].DestinationStaypointID)
}
