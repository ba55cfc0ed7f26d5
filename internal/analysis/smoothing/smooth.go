// Package smoothing reduces tripleg path geometries with Douglas-Peucker
// simplification. It runs per leg and never touches trip linkage.
package smoothing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobilitylab/trips-backend-go/internal/analysis"
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/segmentation"
)

// SkillName identifies this analyzer in the registry and task table
const SkillName = "tripleg_smoothing"

// SmoothingAnalyzer simplifies tripleg geometries
type SmoothingAnalyzer struct {
	*analysis.BaseAnalyzer
}

// NewSmoothingAnalyzer creates a new tripleg smoothing analyzer
func NewSmoothingAnalyzer(db *sql.DB) analysis.Analyzer {
	return &SmoothingAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(db, SkillName),
	}
}

type params struct {
	ToleranceMeters float64 `json:"tolerance_meters"`
}

// Analyze simplifies every tripleg geometry in place
func (a *SmoothingAnalyzer) Analyze(ctx context.Context, taskID int64, mode string) error {
	log.Printf("[SmoothingAnalyzer] Starting analysis (task_id=%d, mode=%s)", taskID, mode)

	if err := a.MarkTaskAsRunning(taskID); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	p, err := a.loadParams(ctx, taskID)
	if err != nil {
		return err
	}

	triplegs, err := a.loadTriplegs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load triplegs: %w", err)
	}

	smoothed, err := segmentation.SmoothTriplegs(triplegs, p.ToleranceMeters)
	if err != nil {
		return fmt.Errorf("smoothing failed: %w", err)
	}

	updated, err := a.persist(ctx, triplegs, smoothed)
	if err != nil {
		return fmt.Errorf("failed to persist geometries: %w", err)
	}

	if err := a.UpdateTaskProgress(taskID, len(triplegs), len(triplegs), 0); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	summary := map[string]interface{}{
		"total_triplegs":     len(triplegs),
		"updated_geometries": updated,
		"tolerance_meters":   p.ToleranceMeters,
	}
	summaryJSON, _ := json.Marshal(summary)

	if err := a.MarkTaskAsCompleted(taskID, string(summaryJSON)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[SmoothingAnalyzer] Simplified %d of %d tripleg geometries", updated, len(triplegs))
	return nil
}

func (a *SmoothingAnalyzer) loadParams(ctx context.Context, taskID int64) (params, error) {
	p := params{ToleranceMeters: 1.0}

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
	if p.ToleranceMeters <= 0 {
		p.ToleranceMeters = 1.0
	}
	return p, nil
}

func (a *SmoothingAnalyzer) loadTriplegs(ctx context.Context) ([]models.Tripleg, error) {
	query := `
		SELECT id, user_id, geom_json
		FROM triplegs
		WHERE geom_json IS NOT NULL AND geom_json != ''
		ORDER BY id
	`

	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query triplegs: %w", err)
	}
	defer rows.Close()

	var triplegs []models.Tripleg
	for rows.Next() {
		var tl models.Tripleg
		if err := rows.Scan(&tl.ID, &tl.UserID, &tl.GeomJSON); err != nil {
			return nil, fmt.Errorf("failed to scan tripleg: %w", err)
		}
		triplegs = append(triplegs, tl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return triplegs, nil
}

// persist writes back only the geometries the simplification changed
func (a *SmoothingAnalyzer) persist(ctx context.Context, before, after []models.Tripleg) (int, error) {
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE triplegs SET geom_json = ? WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare tripleg update: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for i := range after {
		if after[i].GeomJSON == before[i].GeomJSON {
			continue
		}
		if _, err := stmt.ExecContext(ctx, after[i].GeomJSON, after[i].ID); err != nil {
			return 0, fmt.Errorf("failed to update tripleg %d: %w", after[i].ID, err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return updated, nil
}

// Register the analyzer
func init() {
	analysis.RegisterAnalyzer(SkillName, NewSmoothingAnalyzer)
}
