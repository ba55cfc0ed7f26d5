package models

// Staypoint represents a dwell episode detected for a user
type Staypoint struct {
	ID         int64 `json:"id" db:"id"`
	UserID     int64 `json:"user_id" db:"user_id"`
	StartedAt  int64 `json:"started_at" db:"started_at"`   // Unix timestamp
	FinishedAt int64 `json:"finished_at" db:"finished_at"` // Unix timestamp

	// Spatial info (center point)
	CenterLat float64 `json:"center_lat,omitempty" db:"center_lat"`
	CenterLon float64 `json:"center_lon,omitempty" db:"center_lon"`

	// Activity marks a staypoint as a meaningful endpoint (vs. an incidental stop).
	// NULL values in the database are read as false.
	Activity bool `json:"activity" db:"activity"`

	// Trip linkage (filled by trip generation)
	TripID     *int64 `json:"trip_id,omitempty" db:"trip_id"`           // Trip this staypoint belongs to (incidental stop)
	PrevTripID *int64 `json:"prev_trip_id,omitempty" db:"prev_trip_id"` // Trip that ends at this staypoint
	NextTripID *int64 `json:"next_trip_id,omitempty" db:"next_trip_id"` // Trip that starts at this staypoint

	// Location linkage (filled by location clustering)
	LocationID *int64 `json:"location_id,omitempty" db:"location_id"`

	// Metadata
	AlgoVersion string `json:"algo_version,omitempty" db:"algo_version"`
	CreatedAt   string `json:"created_at,omitempty" db:"created_at"`
}

// StaypointsResponse represents a paginated response of staypoints
type StaypointsResponse struct {
	Data       []Staypoint `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
