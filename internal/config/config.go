// Package config defines service configuration structures and loading
// hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file and env vars.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory bulk submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the submission idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// WeakScoreThreshold is the score below which a competency counts
	// as a weakness for program recommendation.
	WeakScoreThreshold int `koanf:"weak_score_threshold"`

	// FallbackWeaknessCount is how many of the lowest-scored
	// competencies feed recommendation when none is below the
	// threshold.
	FallbackWeaknessCount int `koanf:"fallback_weakness_count"`

	// ReportTopCount is how many strengths and weaknesses a report
	// lists.
	ReportTopCount int `koanf:"report_top_count"`

	// MaxRecommendationLimit caps GET /recommendations?limit.
	MaxRecommendationLimit int `koanf:"max_recommendation_limit"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		QueueSize:              10_000,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             50_000,
		WeakScoreThreshold:     70,
		FallbackWeaknessCount:  3,
		ReportTopCount:         3,
		MaxRecommendationLimit: 20,
	}
}
