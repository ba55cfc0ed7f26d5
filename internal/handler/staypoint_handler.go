package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/service"
	"github.com/mobilitylab/trips-backend-go/pkg/response"
)

// StaypointHandler handles HTTP requests for staypoints
type StaypointHandler struct {
	service *service.StaypointService
}

// NewStaypointHandler creates a new staypoint handler
func NewStaypointHandler(service *service.StaypointService) *StaypointHandler {
	return &StaypointHandler{service: service}
}

// GetStaypoints handles GET /api/v1/staypoints
func (h *StaypointHandler) GetStaypoints(c *gin.Context) {
	var filter models.StaypointFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	staypoints, total, err := h.service.GetStaypoints(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get staypoints", err)
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, gin.H{
		"data":       staypoints,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

// GetStaypointByID handles GET /api/v1/staypoints/:id
func (h *StaypointHandler) GetStaypointByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid staypoint ID", err)
		return
	}

	staypoint, err := h.service.GetStaypointByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get staypoint", err)
		return
	}

	if staypoint == nil {
		response.Error(c, http.StatusNotFound, "Staypoint not found", nil)
		return
	}

	response.Success(c, staypoint)
}
