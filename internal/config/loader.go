package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if RECALL_CONFIG is set
//  3. env (prefix RECALL_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RECALL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RECALL_ADDR, RECALL_STREAK_WINDOW, ...
	// Map env keys like RECALL_STREAK_WINDOW -> streak_window (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("RECALL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "recall_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.AgentAddr == "":
		return fmt.Errorf("%w: agent_addr must not be empty", ErrInvalidConfig)
	case cfg.Origin == "":
		return fmt.Errorf("%w: origin must not be empty", ErrInvalidConfig)
	case cfg.DatabaseDriver != "sqlite3" && cfg.DatabaseDriver != "postgres":
		return fmt.Errorf("%w: database_driver must be sqlite3 or postgres", ErrInvalidConfig)
	case cfg.StreakWindow <= 0:
		return fmt.Errorf("%w: streak_window must be positive", ErrInvalidConfig)
	case cfg.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	}
	if cfg.QueuePath == "" {
		return fmt.Errorf("%w: queue_path must not be empty", ErrInvalidConfig)
	}
	return nil
}

// IsInvalid reports whether err stems from config validation.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
