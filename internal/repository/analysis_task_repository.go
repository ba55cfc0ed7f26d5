package repository

import (
	"database/sql"
	"fmt"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// AnalysisTaskRepository handles database operations for analysis tasks
type AnalysisTaskRepository struct {
	db *sql.DB
}

// NewAnalysisTaskRepository creates a new analysis task repository
func NewAnalysisTaskRepository(db *sql.DB) *AnalysisTaskRepository {
	return &AnalysisTaskRepository{db: db}
}

// Create creates a new analysis task
func (r *AnalysisTaskRepository) Create(task *models.AnalysisTask) error {
	query := `
		INSERT INTO analysis_tasks (
			skill_name, task_type, run_id, status, progress_percent,
			params_json, total_records, processed_records, failed_records,
			result_summary, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		task.SkillName,
		task.TaskType,
		task.RunID,
		task.Status,
		task.ProgressPercent,
		task.ParamsJSON,
		task.TotalRecords,
		task.ProcessedRecords,
		task.FailedRecords,
		task.ResultSummary,
		task.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves an analysis task by ID
func (r *AnalysisTaskRepository) GetByID(id int64) (*models.AnalysisTask, error) {
	query := `
		SELECT id, skill_name, task_type, run_id, status, progress_percent,
		       params_json, total_records, processed_records, failed_records,
		       result_summary, error_message, created_at, started_at, completed_at
		FROM analysis_tasks
		WHERE id = ?
	`

	task := &models.AnalysisTask{}
	var paramsJSON, resultSummary, errorMessage sql.NullString
	var startedAt, completedAt sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&task.ID,
		&task.SkillName,
		&task.TaskType,
		&task.RunID,
		&task.Status,
		&task.ProgressPercent,
		&paramsJSON,
		&task.TotalRecords,
		&task.ProcessedRecords,
		&task.FailedRecords,
		&resultSummary,
		&errorMessage,
		&task.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis task: %w", err)
	}

	task.ParamsJSON = paramsJSON.String
	task.ResultSummary = resultSummary.String
	task.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		task.StartedAt = &startedAt.String
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.String
	}

	return task, nil
}

// List retrieves the most recent analysis tasks, optionally filtered by skill
func (r *AnalysisTaskRepository) List(skillName string, limit int) ([]models.AnalysisTask, error) {
	query := `
		SELECT id, skill_name, task_type, run_id, status, progress_percent,
		       params_json, total_records, processed_records, failed_records,
		       result_summary, error_message, created_at, started_at, completed_at
		FROM analysis_tasks
	`

	var args []interface{}
	if skillName != "" {
		query += " WHERE skill_name = ?"
		args = append(args, skillName)
	}

	if limit < 1 {
		limit = 50
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.AnalysisTask
	for rows.Next() {
		var task models.AnalysisTask
		var paramsJSON, resultSummary, errorMessage sql.NullString
		var startedAt, completedAt sql.NullString

		err := rows.Scan(
			&task.ID,
			&task.SkillName,
			&task.TaskType,
			&task.RunID,
			&task.Status,
			&task.ProgressPercent,
			&paramsJSON,
			&task.TotalRecords,
			&task.ProcessedRecords,
			&task.FailedRecords,
			&resultSummary,
			&errorMessage,
			&task.CreatedAt,
			&startedAt,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis task: %w", err)
		}

		task.ParamsJSON = paramsJSON.String
		task.ResultSummary = resultSummary.String
		task.ErrorMessage = errorMessage.String
		if startedAt.Valid {
			started := startedAt.String
			task.StartedAt = &started
		}
		if completedAt.Valid {
			completed := completedAt.String
			task.CompletedAt = &completed
		}

		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// MarkAsFailed marks a task as failed with an error message
func (r *AnalysisTaskRepository) MarkAsFailed(id int64, errorMsg string) error {
	query := `
		UPDATE analysis_tasks
		SET status = 'failed',
		    error_message = ?,
		    completed_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, errorMsg, id)
	if err != nil {
		return fmt.Errorf("failed to mark task as failed: %w", err)
	}
	return nil
}
