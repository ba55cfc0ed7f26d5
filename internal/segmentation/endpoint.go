package segmentation

// endpoint is a trip origin or destination: either a recorded activity
// staypoint or the unknown placeholder used when the endpoint activity was
// not observed (recording gap or sequence boundary). The unknown variant
// carries no staypoint id, so it can never leak into a linkage column.
type endpoint struct {
	userID     int64
	known      bool
	sid        int64
	isActivity bool
}

func knownEndpoint(ev event) endpoint {
	return endpoint{userID: ev.userID, known: true, sid: ev.id, isActivity: ev.isActivity}
}

// unknownEndpoint stands in for an unrecorded activity
func unknownEndpoint(userID int64) endpoint {
	return endpoint{userID: userID, isActivity: true}
}

// staypointID returns the recorded staypoint id, or ok=false for the
// unknown variant.
func (e endpoint) staypointID() (int64, bool) {
	if !e.known {
		return 0, false
	}
	return e.sid, true
}

// idRef returns a fresh pointer to the staypoint id, or nil for the
// unknown variant.
func (e endpoint) idRef() *int64 {
	if !e.known {
		return nil
	}
	id := e.sid
	return &id
}
