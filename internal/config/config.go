package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all adapter configuration resolved from the environment.
type Config struct {
	// DSN identifies the remote collector. Empty means capture-only:
	// SendEvent fails its precondition without attempting a network call.
	DSN string `env:"RAVEN_DSN"`

	// Transport forces a delivery mechanism: "http", "request", or ""
	// for capability-based selection.
	Transport string `env:"RAVEN_TRANSPORT"`

	// Timeout bounds one delivery attempt.
	Timeout time.Duration `env:"RAVEN_TIMEOUT" envDefault:"30s"`

	// SkipFrames trims additional caller frames from synthetic message
	// stacktraces, on top of the normalizer's own.
	SkipFrames int `env:"RAVEN_SKIP_FRAMES" envDefault:"0"`

	// MaxBreadcrumbs caps the in-process engine's breadcrumb ring.
	MaxBreadcrumbs int `env:"RAVEN_MAX_BREADCRUMBS" envDefault:"100"`

	// Async queues events for background delivery instead of sending
	// inline.
	Async bool `env:"RAVEN_ASYNC" envDefault:"false"`

	// DedupWindow suppresses deliveries of repeated identical events
	// within the window. Zero disables deduplication.
	DedupWindow time.Duration `env:"RAVEN_DEDUP_WINDOW" envDefault:"0"`

	// Environment tags outgoing events (e.g. "production").
	Environment string `env:"RAVEN_ENVIRONMENT"`

	LogLevel  string `env:"RAVEN_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"RAVEN_LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from environment variables, consulting a .env
// file first for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
