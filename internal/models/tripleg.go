package models

// Tripleg represents a recorded travel segment between two points in time.
// Triplegs are never activities.
type Tripleg struct {
	ID         int64 `json:"id" db:"id"`
	UserID     int64 `json:"user_id" db:"user_id"`
	StartedAt  int64 `json:"started_at" db:"started_at"`   // Unix timestamp
	FinishedAt int64 `json:"finished_at" db:"finished_at"` // Unix timestamp

	// Path geometry as a JSON array of [lon, lat] pairs
	GeomJSON       string  `json:"geom_json,omitempty" db:"geom_json"`
	DistanceMeters float64 `json:"distance_meters,omitempty" db:"distance_meters"`

	// Trip linkage (filled by trip generation)
	TripID *int64 `json:"trip_id,omitempty" db:"trip_id"`

	// Metadata
	AlgoVersion string `json:"algo_version,omitempty" db:"algo_version"`
	CreatedAt   string `json:"created_at,omitempty" db:"created_at"`
}

// TriplegsResponse represents a paginated response of triplegs
type TriplegsResponse struct {
	Data       []Tripleg `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}
