package config_test

import (
	"os"
	"testing"
	"time"

	"campus-event-system/internal/config"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.UndoWindowMin != 10 {
		t.Errorf("UndoWindowMin = %d, want %d", cfg.UndoWindowMin, 10)
	}
	if cfg.NotifyRate != 25 {
		t.Errorf("NotifyRate = %g, want %g", cfg.NotifyRate, 25.0)
	}
	if cfg.NotifyBurst != 50 {
		t.Errorf("NotifyBurst = %d, want %d", cfg.NotifyBurst, 50)
	}
	if len(cfg.Integrations) != 2 || cfg.Integrations[0] != "google_calendar" || cfg.Integrations[1] != "outlook" {
		t.Errorf("Integrations = %v, want [google_calendar outlook]", cfg.Integrations)
	}
	if cfg.OrgDomain != "campus.edu" {
		t.Errorf("OrgDomain = %q, want %q", cfg.OrgDomain, "campus.edu")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "EVENTS_LOG_LEVEL", "debug")
	setEnv(t, "EVENTS_UNDO_WINDOW_MIN", "30")
	setEnv(t, "EVENTS_NOTIFY_RATE", "5.5")
	setEnv(t, "EVENTS_NOTIFY_BURST", "10")
	setEnv(t, "EVENTS_INTEGRATIONS", "google_calendar,outlook,campus_portal")
	setEnv(t, "EVENTS_ORG_DOMAIN", "example.edu")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.UndoWindowMin != 30 {
		t.Errorf("UndoWindowMin = %d, want %d", cfg.UndoWindowMin, 30)
	}
	if cfg.NotifyRate != 5.5 {
		t.Errorf("NotifyRate = %g, want %g", cfg.NotifyRate, 5.5)
	}
	if cfg.NotifyBurst != 10 {
		t.Errorf("NotifyBurst = %d, want %d", cfg.NotifyBurst, 10)
	}
	if len(cfg.Integrations) != 3 || cfg.Integrations[2] != "campus_portal" {
		t.Errorf("Integrations = %v, want 3 entries ending in campus_portal", cfg.Integrations)
	}
	if cfg.OrgDomain != "example.edu" {
		t.Errorf("OrgDomain = %q, want %q", cfg.OrgDomain, "example.edu")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero undo window", "EVENTS_UNDO_WINDOW_MIN", "0"},
		{"negative undo window", "EVENTS_UNDO_WINDOW_MIN", "-5"},
		{"zero rate", "EVENTS_NOTIFY_RATE", "0"},
		{"negative burst", "EVENTS_NOTIFY_BURST", "-1"},
		{"unparsable number", "EVENTS_UNDO_WINDOW_MIN", "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("Load() should fail with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_UndoWindow(t *testing.T) {
	tests := []struct {
		min  int
		want time.Duration
	}{
		{10, 10 * time.Minute},
		{1, time.Minute},
		{60, time.Hour},
	}

	for _, tt := range tests {
		cfg := config.Config{UndoWindowMin: tt.min}
		if got := cfg.UndoWindow(); got != tt.want {
			t.Errorf("UndoWindow() with %d min = %v, want %v", tt.min, got, tt.want)
		}
	}
}
