package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	LogLevel      string   `env:"EVENTS_LOG_LEVEL" envDefault:"info"`
	UndoWindowMin int      `env:"EVENTS_UNDO_WINDOW_MIN" envDefault:"10"`
	NotifyRate    float64  `env:"EVENTS_NOTIFY_RATE" envDefault:"25"`
	NotifyBurst   int      `env:"EVENTS_NOTIFY_BURST" envDefault:"50"`
	Integrations  []string `env:"EVENTS_INTEGRATIONS" envDefault:"google_calendar,outlook"`
	OrgDomain     string   `env:"EVENTS_ORG_DOMAIN" envDefault:"campus.edu"`
}

// UndoWindow returns the cancellation undo window as a duration.
func (c Config) UndoWindow() time.Duration {
	return time.Duration(c.UndoWindowMin) * time.Minute
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.UndoWindowMin <= 0 {
		return nil, fmt.Errorf("EVENTS_UNDO_WINDOW_MIN must be positive, got %d", cfg.UndoWindowMin)
	}
	if cfg.NotifyRate <= 0 {
		return nil, fmt.Errorf("EVENTS_NOTIFY_RATE must be positive, got %g", cfg.NotifyRate)
	}
	if cfg.NotifyBurst <= 0 {
		return nil, fmt.Errorf("EVENTS_NOTIFY_BURST must be positive, got %d", cfg.NotifyBurst)
	}
	if cfg.OrgDomain == "" {
		return nil, fmt.Errorf("EVENTS_ORG_DOMAIN must not be empty")
	}

	return cfg, nil
}
