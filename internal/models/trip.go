package models

// Trip represents a span of movement between two activities.
// Origin/destination are nil when the endpoint activity was not observed
// (trip starts or ends in a recording gap or at a sequence boundary).
type Trip struct {
	ID         int64 `json:"id" db:"id"`
	UserID     int64 `json:"user_id" db:"user_id"`
	StartedAt  int64 `json:"started_at" db:"started_at"`   // Unix timestamp, start of first trip element
	FinishedAt int64 `json:"finished_at" db:"finished_at"` // Unix timestamp, end of last trip element

	OriginStaypointID      *int64 `json:"origin_staypoint_id,omitempty" db:"origin_staypoint_id"`
	DestinationStaypointID *int64 `json:"destination_staypoint_id,omitempty" db:"destination_staypoint_id"`

	// Metadata
	AlgoVersion string `json:"algo_version,omitempty" db:"algo_version"`
	CreatedAt   string `json:"created_at,omitempty" db:"created_at"`
}

// TripsResponse represents a paginated response of trips
type TripsResponse struct {
	Data       []Trip `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}
