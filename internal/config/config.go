package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration, loaded from environment variables.
type Config struct {
	Port                    string  `env:"PORT" envDefault:":8080"`
	DBPath                  string  `env:"DB_PATH" envDefault:"./data/mobility/mobility.db"`
	JWTSecret               string  `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production"`
	GapThresholdMinutes     int     `env:"GAP_THRESHOLD_MINUTES" envDefault:"15"`
	TripIDOffset            int64   `env:"TRIP_ID_OFFSET" envDefault:"0"`
	SimplifyToleranceMeters float64 `env:"SIMPLIFY_TOLERANCE_METERS" envDefault:"1.0"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.GapThresholdMinutes <= 0 {
		return nil, fmt.Errorf("GAP_THRESHOLD_MINUTES must be positive, got %v", cfg.GapThresholdMinutes)
	}
	if cfg.TripIDOffset < 0 {
		return nil, fmt.Errorf("TRIP_ID_OFFSET must not be negative, got %d", cfg.TripIDOffset)
	}
	return &cfg, nil
}
