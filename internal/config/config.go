// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers an optional YAML file and RECALL_-prefixed env vars on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/okian/recall/internal/domain/stats"
)

// Config contains process configuration for both the server and the
// offline agent; each binary reads its own fields.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the server's HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseDriver selects the outcome log backend: sqlite3 or postgres.
	DatabaseDriver string `koanf:"database_driver"`

	// DatabaseDSN is the driver-specific connection string.
	DatabaseDSN string `koanf:"database_dsn"`

	// AuthToken is the shared bearer credential write requests must carry.
	// Token issuance is outside this system; the server only verifies.
	AuthToken string `koanf:"auth_token"`

	// StreakWindow bounds the current-streak scan over recent records.
	StreakWindow int `koanf:"streak_window"`

	// MaxDailyDays caps the ?days parameter of the daily stats endpoint.
	MaxDailyDays int `koanf:"max_daily_days"`

	// DedupeSize bounds the server's seen-submission-id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// AgentAddr configures the offline agent's local listen address.
	AgentAddr string `koanf:"agent_addr"`

	// Origin is the server base URL the agent proxies to.
	Origin string `koanf:"origin"`

	// QueuePath locates the agent's durable submission queue file.
	QueuePath string `koanf:"queue_path"`

	// QueueCapacity bounds the number of pending offline submissions.
	QueueCapacity int `koanf:"queue_capacity"`

	// ProbeIntervalSeconds sets how often connectivity is probed.
	ProbeIntervalSeconds int `koanf:"probe_interval_seconds"`

	// ReconcileIntervalSeconds sets the periodic safety-net reconcile tick.
	ReconcileIntervalSeconds int `koanf:"reconcile_interval_seconds"`

	// RequestTimeoutMS bounds each upstream attempt, live or replayed.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// StaticVersion and DynamicVersion tag the agent's cache partitions;
	// bumping a tag drops that partition wholesale at startup.
	StaticVersion  string `koanf:"static_version"`
	DynamicVersion string `koanf:"dynamic_version"`

	// StaticAssets lists origin paths pre-seeded into the static partition.
	StaticAssets []string `koanf:"static_assets"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":8080",
		DatabaseDriver:           "sqlite3",
		DatabaseDSN:              "data/recall.db",
		AuthToken:                "",
		StreakWindow:             stats.DefaultStreakWindow,
		MaxDailyDays:             90,
		DedupeSize:               50_000,
		AgentAddr:                ":8090",
		Origin:                   "http://127.0.0.1:8080",
		QueuePath:                "data/queue.json",
		QueueCapacity:            1024,
		ProbeIntervalSeconds:     15,
		ReconcileIntervalSeconds: 60,
		RequestTimeoutMS:         5000,
		StaticVersion:            "static-v1",
		DynamicVersion:           "dynamic-v1",
		StaticAssets:             []string{"/", "/manifest.json"},
	}
}
