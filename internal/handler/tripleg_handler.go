package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/service"
	"github.com/mobilitylab/trips-backend-go/pkg/response"
)

// TriplegHandler handles HTTP requests for triplegs
type TriplegHandler struct {
	service          *service.TriplegService
	defaultTolerance float64
}

// NewTriplegHandler creates a new tripleg handler. defaultTolerance is the
// simplification tolerance in meters used when a request does not set one.
func NewTriplegHandler(service *service.TriplegService, defaultTolerance float64) *TriplegHandler {
	return &TriplegHandler{service: service, defaultTolerance: defaultTolerance}
}

// GetTriplegs handles GET /api/v1/triplegs
func (h *TriplegHandler) GetTriplegs(c *gin.Context) {
	var filter models.TriplegFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	triplegs, total, err := h.service.GetTriplegs(filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get triplegs", err)
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
		"data":       triplegs,
		"total":      total,
		"page":       filter.Page,
		"pageSize":   filter.PageSize,
		"totalPages": totalPages,
	})
}

// GetSmoothedTriplegs handles GET /api/v1/triplegs/smoothed.
// Geometries are simplified on the fly; nothing is written back.
func (h *TriplegHandler) GetSmoothedTriplegs(c *gin.Context) {
	var filter models.TriplegFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	tolerance, err := resolveTolerance(c.Query("tolerance"), h.defaultTolerance)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid tolerance", err)
		return
	}

	triplegs, total, err := h.service.PreviewSmoothed(filter, tolerance)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to smooth triplegs", err)
		return
	}

	response.Success(c, gin.H{
		"data":      triplegs,
		"total":     total,
		"tolerance": tolerance,
	})
}

// resolveTolerance parses the tolerance query parameter, falling back to the
// configured default when absent. Zero and negative values are rejected.
func resolveTolerance(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if t <= 0 {
		return 0, fmt.Errorf("tolerance must be positive, got %v", t)
	}
	return t, nil
}
