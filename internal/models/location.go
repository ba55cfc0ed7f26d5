package models

// Location represents a cluster of activity staypoints a user visited repeatedly
type Location struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`

	// Cluster center
	CenterLat float64 `json:"center_lat" db:"center_lat"`
	CenterLon float64 `json:"center_lon" db:"center_lon"`

	StaypointCount int `json:"staypoint_count" db:"staypoint_count"`

	// Metadata
	AlgoVersion string `json:"algo_version,omitempty" db:"algo_version"`
	CreatedAt   string `json:"created_at,omitempty" db:"created_at"`
}
