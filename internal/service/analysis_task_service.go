package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobilitylab/trips-backend-go/internal/analysis"
	"github.com/mobilitylab/trips-backend-go/internal/analysis/smoothing"
	"github.com/mobilitylab/trips-backend-go/internal/analysis/trips"
	"github.com/mobilitylab/trips-backend-go/internal/config"
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/repository"
)

// AnalysisTaskService handles analysis task business logic
type AnalysisTaskService struct {
	repo *repository.AnalysisTaskRepository
	db   *sql.DB
	cfg  *config.Config
}

// NewAnalysisTaskService creates a new analysis task service. The config
// supplies the per-skill parameter defaults applied when a task omits them.
func NewAnalysisTaskService(repo *repository.AnalysisTaskRepository, db *sql.DB, cfg *config.Config) *AnalysisTaskService {
	return &AnalysisTaskService{
		repo: repo,
		db:   db,
		cfg:  cfg,
	}
}

// CreateTask creates a new analysis task and starts its analyzer
func (s *AnalysisTaskService) CreateTask(skillName string, taskType string, params map[string]interface{}) (*models.AnalysisTask, error) {
	if !analysis.IsKnownSkill(skillName) {
		return nil, fmt.Errorf("unknown skill: %s", skillName)
	}
	if taskType != models.TaskTypeIncremental && taskType != models.TaskTypeFullRecompute {
		return nil, fmt.Errorf("invalid task type: %s", taskType)
	}

	params = s.applyDefaults(skillName, params)

	paramsJSON := ""
	if params != nil {
		paramsBytes, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize params: %w", err)
		}
		paramsJSON = string(paramsBytes)
	}

	task := &models.AnalysisTask{
		SkillName:  skillName,
		TaskType:   taskType,
		RunID:      analysis.NewRunID(),
		Status:     models.TaskStatusPending,
		ParamsJSON: paramsJSON,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	go s.runAnalyzer(task.ID, skillName, taskType)

	return task, nil
}

// applyDefaults fills in the configured defaults for parameters the caller
// left out, so a task's params_json always records the effective values
func (s *AnalysisTaskService) applyDefaults(skillName string, params map[string]interface{}) map[string]interface{} {
	if s.cfg == nil {
		return params
	}

	set := func(key string, value interface{}) {
		if params == nil {
			params = map[string]interface{}{}
		}
		if _, ok := params[key]; !ok {
			params[key] = value
		}
	}

	switch skillName {
	case trips.SkillName:
		set("gap_threshold_minutes", s.cfg.GapThresholdMinutes)
		set("id_offset", s.cfg.TripIDOffset)
	case smoothing.SkillName:
		set("tolerance_meters", s.cfg.SimplifyToleranceMeters)
	}

	return params
}

// GetTask retrieves a task by ID
func (s *AnalysisTaskService) GetTask(id int64) (*models.AnalysisTask, error) {
	return s.repo.GetByID(id)
}

// ListTasks retrieves recent tasks, optionally filtered by skill
func (s *AnalysisTaskService) ListTasks(skillName string, limit int) ([]models.AnalysisTask, error) {
	return s.repo.List(skillName, limit)
}

// runAnalyzer executes the skill's analyzer in-process
func (s *AnalysisTaskService) runAnalyzer(taskID int64, skillName string, taskType string) {
	log.Printf("Starting analyzer for task %d (skill: %s, type: %s)", taskID, skillName, taskType)

	analyzer := analysis.GetAnalyzer(skillName, s.db)
	if analyzer == nil {
		log.Printf("Failed to get analyzer for skill: %s", skillName)
		s.repo.MarkAsFailed(taskID, fmt.Sprintf("Unknown skill: %s", skillName))
		return
	}

	mode := "incremental"
	if taskType == models.TaskTypeFullRecompute {
		mode = "full"
	}

	if err := analyzer.Analyze(context.Background(), taskID, mode); err != nil {
		log.Printf("Analysis failed for task %d: %v", taskID, err)
		s.repo.MarkAsFailed(taskID, fmt.Sprintf("Analysis failed: %v", err))
		return
	}

	log.Printf("Analysis completed for task %d", taskID)
}
