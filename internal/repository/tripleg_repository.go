package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// TriplegRepository handles database operations for triplegs
type TriplegRepository struct {
	db *sql.DB
}

// NewTriplegRepository creates a new tripleg repository
func NewTriplegRepository(db *sql.DB) *TriplegRepository {
	return &TriplegRepository{db: db}
}

// GetTriplegs retrieves triplegs with filtering and pagination
func (r *TriplegRepository) GetTriplegs(filter models.TriplegFilter) ([]models.Tripleg, int64, error) {
	query := `SELECT id, user_id, started_at, finished_at, geom_json, distance_meters, trip_id
		FROM triplegs`

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
	if filter.TripID > 0 {
		conditions = append(conditions, "trip_id = ?")
		args = append(args, filter.TripID)
	}
	if filter.MinDistance > 0 {
		conditions = append(conditions, "distance_meters >= ?")
		args = append(args, filter.MinDistance)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM triplegs"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count triplegs: %w", err)
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
		return nil, 0, fmt.Errorf("failed to query triplegs: %w", err)
	}
	defer rows.Close()

	var triplegs []models.Tripleg
	for rows.Next() {
		var tl models.Tripleg
		var geomJSON sql.NullString
		var distance sql.NullFloat64
		var tripID sql.NullInt64

		err := rows.Scan(&tl.ID, &tl.UserID, &tl.StartedAt, &tl.FinishedAt, &geomJSON, &distance, &tripID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tripleg: %w", err)
		}

		tl.GeomJSON = geomJSON.String
		tl.DistanceMeters = distance.Float64
		if tripID.Valid {
			tl.TripID = &tripID.Int64
		}

		triplegs = append(triplegs, tl)
	}

	return triplegs, total, rows.Err()
}
