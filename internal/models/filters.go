package models

// StaypointFilter represents filter parameters for querying staypoints
type StaypointFilter struct {
	UserID       int64 `form:"userId"`
	StartTime    int64 `form:"startTime"` // Unix timestamp
	EndTime      int64 `form:"endTime"`   // Unix timestamp
	ActivityOnly bool  `form:"activityOnly"`
	TripID       int64 `form:"tripId"` // Staypoints folded into this trip
	Page         int   `form:"page"`
	PageSize     int   `form:"pageSize"`
}

// TriplegFilter represents filter parameters for querying triplegs
type TriplegFilter struct {
	UserID      int64   `form:"userId"`
	StartTime   int64   `form:"startTime"` // Unix timestamp
	EndTime     int64   `form:"endTime"`   // Unix timestamp
	TripID      int64   `form:"tripId"`
	MinDistance float64 `form:"minDistance"` // Meters
	Page        int     `form:"page"`
	PageSize    int     `form:"pageSize"`
}

// TripFilter represents filter parameters for querying trips
type TripFilter struct {
	UserID      int64 `form:"userId"`
	StartTime   int64 `form:"startTime"` // Unix timestamp
	EndTime     int64 `form:"endTime"`   // Unix timestamp
	KnownOrigin bool  `form:"knownOrigin"` // Only trips with a recorded origin staypoint
	Page        int   `form:"page"`
	PageSize    int   `form:"pageSize"`
}
