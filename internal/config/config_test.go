package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set required environment variables
	os.Setenv("SUBSCRIPTION_NAME", "nepal-floods")
	defer os.Unsetenv("SUBSCRIPTION_NAME")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Test defaults
	if cfg.HyP3.BaseURL != "https://hyp3-api.asf.alaska.edu" {
		t.Errorf("expected default HyP3 base URL, got %s", cfg.HyP3.BaseURL)
	}

	if cfg.ASF.BaseURL != "https://api.daac.asf.alaska.edu" {
		t.Errorf("expected default ASF base URL, got %s", cfg.ASF.BaseURL)
	}

	if cfg.Subscription.JobType != "RTC_GAMMA" {
		t.Errorf("expected default job type RTC_GAMMA, got %s", cfg.Subscription.JobType)
	}

	if cfg.Mosaic.Filename != "DEM-Mosaic.tif" {
		t.Errorf("expected default mosaic filename DEM-Mosaic.tif, got %s", cfg.Mosaic.Filename)
	}

	if cfg.Workspace.WorkDir != "./data" {
		t.Errorf("expected default work dir ./data, got %s", cfg.Workspace.WorkDir)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("SUBSCRIPTION_NAME", "nepal-floods")
	os.Setenv("SUBSCRIPTION_START", "2024-01-01")
	os.Setenv("SUBSCRIPTION_END", "2024-01-31")
	os.Setenv("SUBSCRIPTION_PATH", "114")
	os.Setenv("SUBSCRIPTION_FLIGHT_DIRECTION", "DESCENDING")
	os.Setenv("HYP3_TIMEOUT", "45s")
	os.Setenv("MOSAIC_SKIP_BAD_TILES", "true")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")

	defer func() {
		os.Unsetenv("SUBSCRIPTION_NAME")
		os.Unsetenv("SUBSCRIPTION_START")
		os.Unsetenv("SUBSCRIPTION_END")
		os.Unsetenv("SUBSCRIPTION_PATH")
		os.Unsetenv("SUBSCRIPTION_FLIGHT_DIRECTION")
		os.Unsetenv("HYP3_TIMEOUT")
		os.Unsetenv("MOSAIC_SKIP_BAD_TILES")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("LOG_FORMAT")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Subscription.Path != 114 {
		t.Errorf("expected path 114, got %d", cfg.Subscription.Path)
	}

	if cfg.HyP3.Timeout != 45*time.Second {
		t.Errorf("expected HyP3 timeout 45s, got %s", cfg.HyP3.Timeout)
	}

	if !cfg.Mosaic.SkipBadTiles {
		t.Error("expected skip bad tiles enabled")
	}

	start, end, err := cfg.Subscription.DateRange()
	if err != nil {
		t.Fatalf("DateRange() failed: %v", err)
	}
	if start == nil || !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", start)
	}
	if end == nil || end.Day() != 31 || end.Hour() != 23 {
		t.Errorf("expected end at last instant of Jan 31, got %v", end)
	}
}

func TestLoadMissingSubscriptionName(t *testing.T) {
	os.Unsetenv("SUBSCRIPTION_NAME")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when subscription name is missing")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "negative path",
			mutate: func(c *Config) { c.Subscription.Path = -1 },
		},
		{
			name:   "bad flight direction",
			mutate: func(c *Config) { c.Subscription.FlightDirection = "SIDEWAYS" },
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
		},
		{
			name:   "zero timeout",
			mutate: func(c *Config) { c.HyP3.Timeout = 0 },
		},
		{
			name:   "empty mosaic filename",
			mutate: func(c *Config) { c.Mosaic.Filename = "" },
		},
		{
			name:   "end before start",
			mutate: func(c *Config) { c.Subscription.Start = "2024-02-01"; c.Subscription.End = "2024-01-01" },
		},
		{
			name:   "unparsable date",
			mutate: func(c *Config) { c.Subscription.Start = "Jan 1 2024" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("SUBSCRIPTION_NAME", "nepal-floods")
			defer os.Unsetenv("SUBSCRIPTION_NAME")

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}

			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
