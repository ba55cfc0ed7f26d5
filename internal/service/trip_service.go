package service

import (
	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/repository"
	"github.com/mobilitylab/trips-backend-go/internal/stats"
)

// TripStats summarizes trip durations, in seconds
type TripStats struct {
	Count          int     `json:"count"`
	MeanDuration   float64 `json:"mean_duration"`
	MedianDuration float64 `json:"median_duration"`
	StdDevDuration float64 `json:"stddev_duration"`
	P25Duration    float64 `json:"p25_duration"`
	P75Duration    float64 `json:"p75_duration"`
	MinDuration    float64 `json:"min_duration"`
	MaxDuration    float64 `json:"max_duration"`
}

// TripService handles business logic for trips
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// GetTrips retrieves trips with filtering and pagination
func (s *TripService) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	return s.repo.GetTrips(filter)
}

// GetTripByID retrieves a single trip by ID
func (s *TripService) GetTripByID(id int64) (*models.Trip, error) {
	return s.repo.GetTripByID(id)
}

// GetTripStats computes duration statistics over all trips, optionally
// restricted to one user
func (s *TripService) GetTripStats(userID int64) (*TripStats, error) {
	durations, err := s.repo.GetTripDurations(userID)
	if err != nil {
		return nil, err
	}

	return &TripStats{
		Count:          len(durations),
		MeanDuration:   stats.Mean(durations),
		MedianDuration: stats.Median(durations),
		StdDevDuration: stats.StdDev(durations),
		P25Duration:    stats.Quantile(durations, 0.25),
		P75Duration:    stats.Quantile(durations, 0.75),
		MinDuration:    stats.Min(durations),
		MaxDuration:    stats.Max(durations),
	}, nil
}
