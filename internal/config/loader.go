package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SCMS_CONFIG is set
//  3. env (prefix SCMS_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SCMS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SCMS_ADDR, SCMS_QUEUE_SIZE, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SCMS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "scms_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the invariants the rest of the service assumes.
func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.WeakScoreThreshold < 1 || cfg.WeakScoreThreshold > 100:
		return fmt.Errorf("%w: weak_score_threshold must be in 1-100", ErrInvalidConfig)
	case cfg.FallbackWeaknessCount < 1:
		return fmt.Errorf("%w: fallback_weakness_count must be positive", ErrInvalidConfig)
	case cfg.ReportTopCount < 1:
		return fmt.Errorf("%w: report_top_count must be positive", ErrInvalidConfig)
	case cfg.MaxRecommendationLimit < 1:
		return fmt.Errorf("%w: max_recommendation_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
