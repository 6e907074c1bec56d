// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server needs to run.
type Config struct {
	// Server
	Port string

	// Remote datasets
	ProductionSheetURL  string
	ProductionWorksheet string
	QualitySheetURL     string
	QualityWorksheet    string

	// Local fallbacks
	ProductionLocalGlob string
	QualityLocalGlob    string

	// Snapshot store
	SnapshotDBPath string
	SnapshotMaxAge time.Duration

	// Fetching
	FetchTimeout time.Duration

	// Memoization
	CacheTTL time.Duration

	// Scoring
	DefaultQualityWeight float64
}

// LoadConfig reads the environment, applying defaults for everything
// optional. Only malformed values error; absent ones fall back.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                 envOrDefault("PORT", "8080"),
		ProductionSheetURL:   os.Getenv("PRODUCTION_SHEET_URL"),
		ProductionWorksheet:  os.Getenv("PRODUCTION_WORKSHEET"),
		QualitySheetURL:      os.Getenv("QUALITY_SHEET_URL"),
		QualityWorksheet:     os.Getenv("QUALITY_WORKSHEET"),
		ProductionLocalGlob:  envOrDefault("PRODUCTION_LOCAL_GLOB", "Data_Maestra_Limpia.xlsx"),
		QualityLocalGlob:     envOrDefault("QUALITY_LOCAL_GLOB", "*calidad*.xlsx"),
		SnapshotDBPath:       envOrDefault("SNAPSHOT_DB_PATH", "data/snapshots.db"),
		SnapshotMaxAge:       7 * 24 * time.Hour,
		FetchTimeout:         15 * time.Second,
		CacheTTL:             10 * time.Minute,
		DefaultQualityWeight: 0.6,
	}

	var err error
	if cfg.SnapshotMaxAge, err = envDuration("SNAPSHOT_MAX_AGE", cfg.SnapshotMaxAge); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}
	if cfg.DefaultQualityWeight, err = envFloat("DEFAULT_QUALITY_WEIGHT", cfg.DefaultQualityWeight); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.DefaultQualityWeight < 0 || c.DefaultQualityWeight > 1 {
		return fmt.Errorf("default quality weight %v outside [0,1]", c.DefaultQualityWeight)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %v", c.FetchTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %v", c.CacheTTL)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
