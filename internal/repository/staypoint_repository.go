package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// StaypointRepository handles database operations for staypoints
type StaypointRepository struct {
	db *sql.DB
}

// NewStaypointRepository creates a new staypoint repository
func NewStaypointRepository(db *sql.DB) *StaypointRepository {
	return &StaypointRepository{db: db}
}

// GetStaypoints retrieves staypoints with filtering and pagination
func (r *StaypointRepository) GetStaypoints(filter models.StaypointFilter) ([]models.Staypoint, int64, error) {
	query := `SELECT id, user_id, started_at, finished_at, center_lat, center_lon,
		activity, trip_id, prev_trip_id, next_trip_id, location_id
		FROM staypoints`

	var conditions []string
	var args []interface{}

	if filter.UserID > 0 {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "finished_at <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.ActivityOnly {
		conditions = append(conditions, "activity = 1")
	}
	if filter.TripID > 0 {
		conditions = append(conditions, "trip_id = ?")
		args = append(args, filter.TripID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM staypoints"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count staypoints: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY user_id, started_at LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query staypoints: %w", err)
	}
	defer rows.Close()

	var staypoints []models.Staypoint
	for rows.Next() {
		sp, err := scanStaypoint(rows)
		if err != nil {
			return nil, 0, err
		}
		staypoints = append(staypoints, sp)
	}

	return staypoints, total, rows.Err()
}

// GetStaypointByID retrieves a single staypoint by ID
func (r *StaypointRepository) GetStaypointByID(id int64) (*models.Staypoint, error) {
	query := `SELECT id, user_id, started_at, finished_at, center_lat, center_lon,
		activity, trip_id, prev_trip_id, next_trip_id, location_id
		FROM staypoints WHERE id = ?`

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staypoint: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	sp, err := scanStaypoint(rows)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func scanStaypoint(rows *sql.Rows) (models.Staypoint, error) {
	var sp models.Staypoint
	var centerLat, centerLon sql.NullFloat64
	var activity sql.NullBool
	var tripID, prevTripID, nextTripID, locationID sql.NullInt64

	err := rows.Scan(
		&sp.ID, &sp.UserID, &sp.StartedAt, &sp.FinishedAt,
		&centerLat, &centerLon, &activity,
		&tripID, &prevTripID, &nextTripID, &locationID,
	)
	if err != nil {
		return sp, fmt.Errorf("failed to scan staypoint: %w", err)
	}

	sp.CenterLat = centerLat.Float64
	sp.CenterLon = centerLon.Float64
	sp.Activity = activity.Valid && activity.Bool
	if tripID.Valid {
		sp.TripID = &tripID.Int64
	}
	if prevTripID.Valid {
		sp.PrevTripID = &prevTripID.Int64
	}
	if nextTripID.Valid {
		sp.NextTripID = &nextTripID.Int64
	}
	if locationID.Valid {
		sp.LocationID = &locationID.Int64
	}

	return sp, nil
}
