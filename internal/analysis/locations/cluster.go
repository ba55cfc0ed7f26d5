// Package locations clusters each user's activity staypoints into locations
// they visited repeatedly.
package locations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobilitylab/trips-backend-go/internal/analysis"
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/spatial"
)

// SkillName identifies this analyzer in the registry and task table
const SkillName = "location_clustering"

// ClusteringAnalyzer derives locations from activity staypoints using DBSCAN
// over haversine distance, independently per user. Location ids come from one
// counter shared across users, in the order users are processed.
type ClusteringAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewClusteringAnalyzer creates a new location clustering analyzer
func NewClusteringAnalyzer(db *sql.DB) analysis.Analyzer {
	return &ClusteringAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(db, SkillName),
	}
}

type params struct {
	EpsilonMeters float64 `json:"epsilon_meters"`
	MinSamples    int     `json:"min_samples"`
}

// Analyze performs location clustering
func (a *ClusteringAnalyzer) Analyze(ctx context.Context, taskID int64, mode string) error {
	log.Printf("[ClusteringAnalyzer] Starting analysis (task_id=%d, mode=%s)", taskID, mode)

	if err := a.MarkTaskAsRunning(taskID); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	p, err := a.loadParams(ctx, taskID)
	if err != nil {
		return err
	}

	if _, err := a.DB.ExecContext(ctx, "DELETE FROM locations"); err != nil {
		return fmt.Errorf("failed to clear locations: %w", err)
	}
	if _, err := a.DB.ExecContext(ctx, "UPDATE staypoints SET location_id = NULL"); err != nil {
		return fmt.Errorf("failed to reset staypoint locations: %w", err)
	}

	staypoints, err := a.loadActivityStaypoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to load staypoints: %w", err)
	}

	log.Printf("[ClusteringAnalyzer] Loaded %d activity staypoints", len(staypoints))

	locations, assignments := clusterByUser(staypoints, p.EpsilonMeters, p.MinSamples)

	if err := a.persist(ctx, locations, assignments); err != nil {
		return fmt.Errorf("failed to persist locations: %w", err)
	}

	summary := map[string]interface{}{
		"total_locations":  len(locations),
		"total_staypoints": len(staypoints),
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := a.MarkTaskAsCompleted(taskID, string(summaryJSON)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[ClusteringAnalyzer] Derived %d locations", len(locations))
	return nil
}

func (a *ClusteringAnalyzer) loadParams(ctx context.Context, taskID int64) (params, error) {
	p := params{EpsilonMeters: 100, MinSamples: 1}

	var paramsJSON sql.NullString
	err := a.DB.QueryRowContext(ctx, "SELECT params_json FROM analysis_tasks WHERE id = ?", taskID).Scan(&paramsJSON)
	if err != nil {
		return p, fmt.Errorf("failed to load task params: %w", err)
	}
	if !paramsJSON.Valid || paramsJSON.String == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(paramsJSON.String), &p); err != nil {
		return p, fmt.Errorf("failed to parse task params: %w", err)
	}
	if p.EpsilonMeters <= 0 {
		p.EpsilonMeters = 100
	}
	if p.MinSamples <= 0 {
		p.MinSamples = 1
	}
	return p, nil
}

func (a *ClusteringAnalyzer) loadActivityStaypoints(ctx context.Context) ([]models.Staypoint, error) {
	query := `
		SELECT id, user_id, center_lat, center_lon
		FROM staypoints
		WHERE activity = 1
		ORDER BY user_id, started_at
	`

	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query staypoints: %w", err)
	}
	defer rows.Close()

	var staypoints []models.Staypoint
	for rows.Next() {
		var sp models.Staypoint
		if err := rows.Scan(&sp.ID, &sp.UserID, &sp.CenterLat, &sp.CenterLon); err != nil {
			return nil, fmt.Errorf("failed to scan staypoint: %w", err)
		}
		staypoints = append(staypoints, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return staypoints, nil
}

// clusterByUser runs DBSCAN on each user's staypoints and maps cluster labels
// to globally unique location ids. Noise staypoints get no location.
func clusterByUser(staypoints []models.Staypoint, epsilonMeters float64, minSamples int) ([]models.Location, map[int64]int64) {
	var locations []models.Location
	assignments := make(map[int64]int64) // staypoint id -> location id
	nextLocationID := int64(0)

	for start := 0; start < len(staypoints); {
		end := start
		for end < len(staypoints) && staypoints[end].UserID == staypoints[start].UserID {
			end++
		}
		userStaypoints := staypoints[start:end]

		points := make([]spatial.Point, len(userStaypoints))
		for i, sp := range userStaypoints {
			points[i] = spatial.Point{Lat: sp.CenterLat, Lon: sp.CenterLon}
		}

		labels := spatial.DBSCAN(points, epsilonMeters, minSamples)

		// Collect cluster members in label order
		clusters := make(map[int][]int)
		maxLabel := -1
		for i, label := range labels {
			if label == spatial.NoiseLabel {
				continue
			}
			clusters[label] = append(clusters[label], i)
			if label > maxLabel {
				maxLabel = label
			}
		}

		for label := 0; label <= maxLabel; label++ {
			members := clusters[label]
			if len(members) == 0 {
				continue
			}

			memberPoints := make([]spatial.Point, len(members))
			for i, idx := range members {
				memberPoints[i] = points[idx]
			}
			center := spatial.Centroid(memberPoints)

			locationID := nextLocationID
			nextLocationID++

			locations = append(locations, models.Location{
				ID:             locationID,
				UserID:         userStaypoints[0].UserID,
				CenterLat:      center.Lat,
				CenterLon:      center.Lon,
				StaypointCount: len(members),
			})
			for _, idx := range members {
				assignments[userStaypoints[idx].ID] = locationID
			}
		}

		start = end
	}

	return locations, assignments
}

func (a *ClusteringAnalyzer) persist(ctx context.Context, locations []models.Location, assignments map[int64]int64) error {
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO locations (id, user_id, center_lat, center_lon, staypoint_count, algo_version, created_at)
		VALUES (?, ?, ?, ?, ?, 'v1', CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare location insert: %w", err)
	}
	defer insertStmt.Close()

	for _, loc := range locations {
		_, err := insertStmt.ExecContext(ctx, loc.ID, loc.UserID, loc.CenterLat, loc.CenterLon, loc.StaypointCount)
		if err != nil {
			return fmt.Errorf("failed to insert location %d: %w", loc.ID, err)
		}
	}

	updateStmt, err := tx.PrepareContext(ctx, "UPDATE staypoints SET location_id = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare staypoint update: %w", err)
	}
	defer updateStmt.Close()

	for staypointID, locationID := range assignments {
		if _, err := updateStmt.ExecContext(ctx, locationID, staypointID); err != nil {
			return fmt.Errorf("failed to update staypoint %d: %w", staypointID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer(SkillName, NewClusteringAnalyzer)
}
