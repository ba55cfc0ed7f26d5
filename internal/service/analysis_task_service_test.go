package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobilitylab/trips-backend-go/internal/analysis/smoothing"
	"github.com/mobilitylab/trips-backend-go/internal/analysis/trips"
	"github.com/mobilitylab/trips-backend-go/internal/config"
)

func defaultsService() *AnalysisTaskService {
	return &AnalysisTaskService{
		cfg: &config.Config{
			GapThresholdMinutes:     30,
			TripIDOffset:            5000,
			SimplifyToleranceMeters: 2.5,
		},
	}
}

func TestApplyDefaultsTripGeneration(t *testing.T) {
	s := defaultsService()

	params := s.applyDefaults(trips.SkillName, nil)
	require.NotNil(t, params)
	assert.Equal(t, 30, params["gap_threshold_minutes"])
	assert.Equal(t, int64(5000), params["id_offset"])
}

func TestApplyDefaultsSmoothing(t *testing.T) {
	s := defaultsService()

	params := s.applyDefaults(smoothing.SkillName, nil)
	require.NotNil(t, params)
	assert.Equal(t, 2.5, params["tolerance_meters"])
}

func TestApplyDefaultsKeepsCallerValues(t *testing.T) {
	s := defaultsService()

	params := s.applyDefaults(trips.SkillName, map[string]interface{}{
		"gap_threshold_minutes": 45,
	})
	assert.Equal(t, 45, params["gap_threshold_minutes"])
	assert.Equal(t, int64(5000), params["id_offset"])
}

func TestApplyDefaultsUnknownSkillUntouched(t *testing.T) {
	s := defaultsService()

	assert.Nil(t, s.applyDefaults("location_clustering", nil))
}

func TestApplyDefaultsWithoutConfig(t *testing.T) {
	s := &AnalysisTaskService{}

	assert.Nil(t, s.applyDefaults(trips.SkillName, nil))
}
