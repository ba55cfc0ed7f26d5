package models

// AnalysisTask represents a background analysis run over the mobility datasets
type AnalysisTask struct {
	ID int64 `json:"id" db:"id"`

	// Task identification
	SkillName string `json:"skill_name" db:"skill_name"` // Which analyzer to run
	TaskType  string `json:"task_type" db:"task_type"`   // INCREMENTAL, FULL_RECOMPUTE
	RunID     string `json:"run_id" db:"run_id"`         // UUID correlating reruns

	// Status
	Status          string  `json:"status" db:"status"` // pending, running, completed, failed
	ProgressPercent float64 `json:"progress_percent" db:"progress_percent"`

	// Input parameters
	ParamsJSON string `json:"params_json,omitempty" db:"params_json"`

	// Execution info
	TotalRecords     int `json:"total_records,omitempty" db:"total_records"`
	ProcessedRecords int `json:"processed_records" db:"processed_records"`
	FailedRecords    int `json:"failed_records" db:"failed_records"`

	// Results
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"` // JSON object with summary statistics
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	CreatedAt   string  `json:"created_at" db:"created_at"`
	StartedAt   *string `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *string `json:"completed_at,omitempty" db:"completed_at"`
}

// TaskType constants
const (
	TaskTypeIncremental   = "INCREMENTAL"
	TaskTypeFullRecompute = "FULL_RECOMPUTE"
)

// TaskStatus constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)
