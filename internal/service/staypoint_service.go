package service

import (
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/repository"
)

// StaypointService handles business logic for staypoints
type StaypointService struct {
	repo *repository.StaypointRepository
}

// NewStaypointService creates a new staypoint service
func NewStaypointService(repo *repository.StaypointRepository) *StaypointService {
	return &StaypointService{repo: repo}
}

// GetStaypoints retrieves staypoints with filtering and pagination
func (s *StaypointService) GetStaypoints(filter models.StaypointFilter) ([]models.Staypoint, int64, error) {
	return s.repo.GetStaypoints(filter)
}

// GetStaypointByID retrieves a single staypoint by ID
func (s *StaypointService) GetStaypointByID(id int64) (*models.Staypoint, error) {
	return s.repo.GetStaypointByID(id)
}
