package segmentation

import "github.com/mobilitylab/trips-backend-go/internal/models"

// linkKind names the column a linkage decision targets
type linkKind int

const (
	linkTriplegMember   linkKind = iota // tripleg.trip_id
	linkStaypointMember                 // staypoint.trip_id (incidental stop inside a trip)
	linkOriginNext                      // staypoint.next_trip_id (trip starts at this staypoint)
	linkDestinationPrev                 // staypoint.prev_trip_id (trip ends at this staypoint)
)

// linkage is one id write-back decision recorded during the scan
type linkage struct {
	tripID   int64
	entityID int64
	kind     linkKind
}

// applyLinkage projects the recorded decisions onto copies of the input
// collections, matching entities by id. It carries no decision logic of its
// own. The caller's slices are never touched.
func applyLinkage(staypoints []models.Staypoint, triplegs []models.Tripleg, links []linkage) ([]models.Staypoint, []models.Tripleg) {
	outStaypoints := make([]models.Staypoint, len(staypoints))
	copy(outStaypoints, staypoints)
	outTriplegs := make([]models.Tripleg, len(triplegs))
	copy(outTriplegs, triplegs)

	staypointByID := make(map[int64]int, len(outStaypoints))
	for i := range outStaypoints {
		staypointByID[outStaypoints[i].ID] = i
	}
	triplegByID := make(map[int64]int, len(outTriplegs))
	for i := range outTriplegs {
		triplegByID[outTriplegs[i].ID] = i
	}

	for _, l := range links {
		id := l.tripID
		switch l.kind {
		case linkTriplegMember:
			if i, ok := triplegByID[l.entityID]; ok {
				outTriplegs[i].TripID = &id
			}
		case linkStaypointMember:
			if i, ok := staypointByID[l.entityID]; ok {
				outStaypoints[i].TripID = &id
			}
		case linkOriginNext:
			if i, ok := staypointByID[l.entityID]; ok {
				outStaypoints[i].NextTripID = &id
			}
		case linkDestinationPrev:
			if i, ok := staypointByID[l.entityID]; ok {
				outStaypoints[i].PrevTripID = &id
			}
		}
	}

	return outStaypoints, outTriplegs
}
