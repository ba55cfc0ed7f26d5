package segmentation

import (
	"sort"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// eventKind discriminates staypoint and tripleg events in the merged timeline
type eventKind int

const (
	kindStaypoint eventKind = iota
	kindTripleg
)

func (k eventKind) String() string {
	if k == kindTripleg {
		return "tripleg"
	}
	return "staypoint"
}

// event is one element of the merged per-user timeline scanned by the state
// machine. The next* lookahead fields refer to the immediately following event
// of the same user; hasNext is false for the last event of each user.
type event struct {
	id         int64
	userID     int64
	kind       eventKind
	startedAt  int64
	finishedAt int64
	isActivity bool

	hasNext        bool
	nextStartedAt  int64
	nextIsActivity bool
}

// buildEvents merges staypoints and triplegs into one timeline sorted stably
// by (user_id, started_at), then fills the per-user lookahead fields.
// Triplegs are never activities.
func buildEvents(staypoints []models.Staypoint, triplegs []models.Tripleg) []event {
	events := make([]event, 0, len(staypoints)+len(triplegs))

	for _, sp := range staypoints {
		events = append(events, event{
			id:         sp.ID,
			userID:     sp.UserID,
			kind:       kindStaypoint,
			startedAt:  sp.StartedAt,
			finishedAt: sp.FinishedAt,
			isActivity: sp.Activity,
		})
	}
	for _, tl := range triplegs {
		events = append(events, event{
			id:         tl.ID,
			userID:     tl.UserID,
			kind:       kindTripleg,
			startedAt:  tl.StartedAt,
			finishedAt: tl.FinishedAt,
		})
	}

	// Stable: ties keep the staypoints-before-triplegs input order
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].userID != events[j].userID {
			return events[i].userID < events[j].userID
		}
		return events[i].startedAt < events[j].startedAt
	})

	for i := range events {
		if i+1 < len(events) && events[i+1].userID == events[i].userID {
			events[i].hasNext = true
			events[i].nextStartedAt = events[i+1].startedAt
			events[i].nextIsActivity = events[i+1].isActivity
		}
	}

	return events
}
