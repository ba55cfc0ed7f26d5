package service

import (
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/repository"
	"github.com/mobilitylab/trips-backend-go/internal/segmentation"
)

// TriplegService handles business logic for triplegs
type TriplegService struct {
	repo *repository.TriplegRepository
}

// NewTriplegService creates a new tripleg service
func NewTriplegService(repo *repository.TriplegRepository) *TriplegService {
	return &TriplegService{repo: repo}
}

// GetTriplegs retrieves triplegs with filtering and pagination
func (s *TriplegService) GetTriplegs(filter models.TriplegFilter) ([]models.Tripleg, int64, error) {
	return s.repo.GetTriplegs(filter)
}

// PreviewSmoothed returns the filtered triplegs with their geometries
// simplified to the given tolerance, without persisting anything
func (s *TriplegService) PreviewSmoothed(filter models.TriplegFilter, toleranceMeters float64) ([]models.Tripleg, int64, error) {
	triplegs, total, err := s.repo.GetTriplegs(filter)
	if err != nil {
		return nil, 0, err
	}

	smoothed, err := segmentation.SmoothTriplegs(triplegs, toleranceMeters)
	if err != nil {
		return nil, 0, err
	}

	return smoothed, total, nil
}
