package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mobilitylab/trips-backend-go/internal/service"
	"github.com/mobilitylab/trips-backend-go/pkg/response"
)

// AnalysisTaskHandler handles HTTP requests for analysis tasks
type AnalysisTaskHandler struct {
	service *service.AnalysisTaskService
}

// NewAnalysisTaskHandler creates a new analysis task handler
func NewAnalysisTaskHandler(service *service.AnalysisTaskService) *AnalysisTaskHandler {
	return &AnalysisTaskHandler{service: service}
}

// CreateTaskRequest represents the request body for creating an analysis task
type CreateTaskRequest struct {
	SkillName string                 `json:"skill_name" binding:"required"`
	TaskType  string                 `json:"task_type" binding:"required"` // INCREMENTAL or FULL_RECOMPUTE
	Params    map[string]interface{} `json:"params"`
}

// CreateTask creates a new analysis task and starts it asynchronously
// POST /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	task, err := h.service.CreateTask(req.SkillName, req.TaskType, req.Params)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	response.Success(c, task)
}

// GetTask retrieves a task by ID
// GET /api/v1/analysis/tasks/:id
func (h *AnalysisTaskHandler) GetTask(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid task ID", err)
		return
	}

	task, err := h.service.GetTask(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get task", err)
		return
	}

	if task == nil {
		response.Error(c, http.StatusNotFound, "Task not found", nil)
		return
	}

	response.Success(c, task)
}

// ListTasks retrieves recent tasks, optionally filtered by skill name
// GET /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) ListTasks(c *gin.Context) {
	skillName := c.Query("skill_name")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}

	tasks, err := h.service.ListTasks(skillName, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	response.Success(c, gin.H{
		"tasks": tasks,
		"limit": limit,
	})
}
