// Package trips runs trip generation over the stored staypoint and tripleg
// datasets and persists the derived trips plus linkage ids.
package trips

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/mobilitylab/trips-backend-go/internal/analysis"
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/segmentation"
)

// SkillName identifies this analyzer in the registry and task table
const SkillName = "trip_generation"

// GenerationAnalyzer derives trips from staypoints and triplegs
type GenerationAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewGenerationAnalyzer creates a new trip generation analyzer
func NewGenerationAnalyzer(db *sql.DB) analysis.Analyzer {
	return &GenerationAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(db, SkillName),
	}
}

// params are the task parameters accepted by this analyzer
type params struct {
	GapThresholdMinutes int   `json:"gap_threshold_minutes"`
	IDOffset            int64 `json:"id_offset"`
	PrintProgress       bool  `json:"print_progress"`
}

// Analyze performs trip generation. The pass is deterministic over the whole
// dataset, so incremental mode recomputes everything as well.
func (a *GenerationAnalyzer) Analyze(ctx context.Context, taskID int64, mode string) error {
	log.Printf("[GenerationAnalyzer] Starting analysis (task_id=%d, mode=%s)", taskID, mode)

	if err := a.MarkTaskAsRunning(taskID); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	// The staypoints table must carry the activity flag before any
	// processing starts; running without it is a caller error
	if err := a.ensureActivityColumn(ctx); err != nil {
		return err
	}

	p, err := a.loadParams(ctx, taskID)
	if err != nil {
		return err
	}

	if mode != "full" {
		log.Printf("[GenerationAnalyzer] Incremental mode not applicable, recomputing all trips")
	}
	if err := a.clearExisting(ctx); err != nil {
		return fmt.Errorf("failed to clear existing trips: %w", err)
	}

	staypoints, err := a.loadStaypoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to load staypoints: %w", err)
	}
	triplegs, err := a.loadTriplegs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load triplegs: %w", err)
	}

	log.Printf("[GenerationAnalyzer] Loaded %d staypoints and %d triplegs", len(staypoints), len(triplegs))

	opts := segmentation.Options{
		GapThreshold: time.Duration(p.GapThresholdMinutes) * time.Minute,
		IDOffset:     p.IDOffset,
	}
	if p.PrintProgress {
		opts.Progress = func(n int) {
			log.Printf("[GenerationAnalyzer] %d trips so far", n)
		}
	}

	res, err := segmentation.GenerateTrips(staypoints, triplegs, opts)
	if err != nil {
		return fmt.Errorf("trip generation failed: %w", err)
	}

	log.Printf("[GenerationAnalyzer] Generated %d trips", len(res.Trips))

	if err := a.persist(ctx, taskID, res); err != nil {
		return fmt.Errorf("failed to persist trips: %w", err)
	}

	summary := map[string]interface{}{
		"total_trips":      len(res.Trips),
		"total_staypoints": len(staypoints),
		"total_triplegs":   len(triplegs),
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := a.MarkTaskAsCompleted(taskID, string(summaryJSON)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[GenerationAnalyzer] Analysis completed")
	return nil
}

// ensureActivityColumn fails fast when the staypoints table lacks the
// activity flag
func (a *GenerationAnalyzer) ensureActivityColumn(ctx context.Context) error {
	rows, err := a.DB.QueryContext(ctx, "PRAGMA table_info(staypoints)")
	if err != nil {
		return fmt.Errorf("failed to inspect staypoints table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == "activity" {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	return fmt.Errorf("staypoints table is missing the activity column, cannot generate trips")
}

// loadParams reads the task's params_json, falling back to defaults
func (a *GenerationAnalyzer) loadParams(ctx context.Context, taskID int64) (params, error) {
	p := params{
		GapThresholdMinutes: int(segmentation.DefaultGapThreshold / time.Minute),
	}

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
	if p.GapThresholdMinutes <= 0 {
		p.GapThresholdMinutes = int(segmentation.DefaultGapThreshold / time.Minute)
	}
	return p, nil
}

// clearExisting drops previously derived trips and resets linkage columns
func (a *GenerationAnalyzer) clearExisting(ctx context.Context) error {
	statements := []string{
		"DELETE FROM trips",
		"UPDATE staypoints SET trip_id = NULL, prev_trip_id = NULL, next_trip_id = NULL",
		"UPDATE triplegs SET trip_id = NULL",
	}
	for _, stmt := range statements {
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// loadStaypoints loads staypoints ordered by user and time. NULL activity
// flags read as false.
func (a *GenerationAnalyzer) loadStaypoints(ctx context.Context) ([]models.Staypoint, error) {
	query := `
		SELECT id, user_id, started_at, finished_at, activity
		FROM staypoints
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
		var activity sql.NullBool

		if err := rows.Scan(&sp.ID, &sp.UserID, &sp.StartedAt, &sp.FinishedAt, &activity); err != nil {
			return nil, fmt.Errorf("failed to scan staypoint: %w", err)
		}
		sp.Activity = activity.Valid && activity.Bool

		staypoints = append(staypoints, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return staypoints, nil
}

// loadTriplegs loads triplegs ordered by user and time
func (a *GenerationAnalyzer) loadTriplegs(ctx context.Context) ([]models.Tripleg, error) {
	query := `
		SELECT id, user_id, started_at, finished_at
		FROM triplegs
		ORDER BY user_id, started_at
	`

	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query triplegs: %w", err)
	}
	defer rows.Close()

	var triplegs []models.Tripleg
	for rows.Next() {
		var tl models.Tripleg
		if err := rows.Scan(&tl.ID, &tl.UserID, &tl.StartedAt, &tl.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tripleg: %w", err)
		}
		triplegs = append(triplegs, tl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return triplegs, nil
}

// persist writes the trips table and the linkage ids in one transaction
func (a *GenerationAnalyzer) persist(ctx context.Context, taskID int64, res *segmentation.Result) error {
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trips (id, user_id, started_at, finished_at, origin_staypoint_id, destination_staypoint_id, algo_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'v1', CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare trip insert: %w", err)
	}
	defer insertStmt.Close()

	for _, trip := range res.Trips {
		_, err := insertStmt.ExecContext(ctx,
			trip.ID, trip.UserID, trip.StartedAt, trip.FinishedAt,
			trip.OriginStaypointID, trip.DestinationStaypointID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip %d: %w", trip.ID, err)
		}
	}

	spStmt, err := tx.PrepareContext(ctx, `
		UPDATE staypoints SET trip_id = ?, prev_trip_id = ?, next_trip_id = ? WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare staypoint update: %w", err)
	}
	defer spStmt.Close()

	total := len(res.Staypoints) + len(res.Triplegs)
	processed := 0

	for _, sp := range res.Staypoints {
		if sp.TripID == nil && sp.PrevTripID == nil && sp.NextTripID == nil {
			processed++
			continue
		}
		if _, err := spStmt.ExecContext(ctx, sp.TripID, sp.PrevTripID, sp.NextTripID, sp.ID); err != nil {
			return fmt.Errorf("failed to update staypoint %d: %w", sp.ID, err)
		}
		processed++
	}

	tlStmt, err := tx.PrepareContext(ctx, "UPDATE triplegs SET trip_id = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare tripleg update: %w", err)
	}
	defer tlStmt.Close()

	for _, tl := range res.Triplegs {
		if tl.TripID == nil {
			processed++
			continue
		}
		if _, err := tlStmt.ExecContext(ctx, tl.TripID, tl.ID); err != nil {
			return fmt.Errorf("failed to update tripleg %d: %w", tl.ID, err)
		}
		processed++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if err := a.UpdateTaskProgress(taskID, processed, total, 0); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	log.Printf("[GenerationAnalyzer] Persisted %d trips and %d linkage updates", len(res.Trips), processed)
	return nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer(SkillName, NewGenerationAnalyzer)
}
