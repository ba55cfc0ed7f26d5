package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetTrips retrieves trips with filtering and pagination
func (r *TripRepository) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	query := `SELECT id, user_id, started_at, finished_at,
		origin_staypoint_id, destination_staypoint_id
		FROM trips`

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
	if filter.KnownOrigin {
		conditions = append(conditions, "origin_staypoint_id IS NOT NULL")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM trips"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
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
	query += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, t)
	}

	return trips, total, rows.Err()
}

// GetTripByID retrieves a single trip by ID
func (r *TripRepository) GetTripByID(id int64) (*models.Trip, error) {
	query := `SELECT id, user_id, started_at, finished_at,
		origin_staypoint_id, destination_staypoint_id
		FROM trips WHERE id = ?`

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	t, err := scanTrip(rows)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTripDurations retrieves the duration in seconds of every trip,
// optionally filtered by user
func (r *TripRepository) GetTripDurations(userID int64) ([]float64, error) {
	query := "SELECT finished_at - started_at FROM trips"
	var args []interface{}
	if userID > 0 {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip durations: %w", err)
	}
	defer rows.Close()

	var durations []float64
	for rows.Next() {
		var d float64
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan trip duration: %w", err)
		}
		durations = append(durations, d)
	}

	return durations, rows.Err()
}

func scanTrip(rows *sql.Rows) (models.Trip, error) {
	var t models.Trip
	var origin, destination sql.NullInt64

	err := rows.Scan(&t.ID, &t.UserID, &t.StartedAt, &t.FinishedAt, &origin, &destination)
	if err != nil {
		return t, fmt.Errorf("failed to scan trip: %w", err)
	}

	if origin.Valid {
		t.OriginStaypointID = &origin.Int64
	}
	if destination.Valid {
		t.DestinationStaypointID = &destination.Int64
	}

	return t, nil
}
