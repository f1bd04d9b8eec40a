// Package config provides configuration management for the hyp3-prep tool.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// dateLayout is how date-range bounds are given in the environment.
const dateLayout = "2006-01-02"

// Config holds the complete application configuration loaded from environment
// variables. Every knob the workflow needs is explicit here; there is no
// interactive state.
type Config struct {
	HyP3         HyP3Config         `envPrefix:"HYP3_"`
	ASF          ASFConfig          `envPrefix:"ASF_"`
	Subscription SubscriptionConfig `envPrefix:"SUBSCRIPTION_"`
	Workspace    WorkspaceConfig    `envPrefix:"WORKSPACE_"`
	Mosaic       MosaicConfig       `envPrefix:"MOSAIC_"`
	Logging      LoggingConfig      `envPrefix:"LOG_"`
}

// HyP3Config contains HyP3 API client configuration.
type HyP3Config struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://hyp3-api.asf.alaska.edu"`
	Token   string        `env:"TOKEN"` // Earthdata bearer token, optional for public jobs
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// DownloadTimeout bounds a single archive download.
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"30m"`
}

// ASFConfig contains ASF search API client configuration.
type ASFConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.daac.asf.alaska.edu"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// SubscriptionConfig selects which jobs of a subscription are downloaded.
type SubscriptionConfig struct {
	Name    string `env:"NAME"` // required
	JobType string `env:"JOB_TYPE" envDefault:"RTC_GAMMA"`

	// Start and End bound the granule acquisition date (inclusive),
	// formatted 2006-01-02. Empty means unbounded.
	Start string `env:"START"`
	End   string `env:"END"`

	// Path restricts to one relative orbit; 0 means any.
	Path int `env:"PATH" envDefault:"0"`

	// FlightDirection restricts to ASCENDING or DESCENDING; empty means any.
	FlightDirection string `env:"FLIGHT_DIRECTION"`
}

// WorkspaceConfig contains the directory layout of a run.
type WorkspaceConfig struct {
	// WorkDir holds downloads, extracted products and DEM tiles.
	WorkDir string `env:"WORK_DIR" envDefault:"./data"`

	// OutputDir receives the renamed polarization rasters and the mosaic.
	OutputDir string `env:"OUTPUT_DIR" envDefault:"./output"`

	// KeepArchives leaves downloaded zip files in place after extraction.
	KeepArchives bool `env:"KEEP_ARCHIVES" envDefault:"false"`
}

// MosaicConfig contains mosaic preparation configuration.
type MosaicConfig struct {
	Filename    string `env:"FILENAME" envDefault:"DEM-Mosaic.tif"`
	TilePattern string `env:"TILE_PATTERN" envDefault:"*.tif"`

	// SkipBadTiles drops unreadable or unreprojectable tiles instead of
	// aborting the run.
	SkipBadTiles bool `env:"SKIP_BAD_TILES" envDefault:"false"`

	// WriteSidecar emits a STAC Item JSON next to the mosaic.
	WriteSidecar bool `env:"WRITE_SIDECAR" envDefault:"true"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses configuration from environment variables.
// It returns an error if required fields are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.HyP3.BaseURL == "" {
		return fmt.Errorf("HyP3 base URL is required")
	}
	if c.HyP3.Timeout <= 0 {
		return fmt.Errorf("HyP3 timeout must be positive, got %s", c.HyP3.Timeout)
	}
	if c.HyP3.DownloadTimeout <= 0 {
		return fmt.Errorf("HyP3 download timeout must be positive, got %s", c.HyP3.DownloadTimeout)
	}

	if c.ASF.BaseURL == "" {
		return fmt.Errorf("ASF base URL is required")
	}
	if c.ASF.Timeout <= 0 {
		return fmt.Errorf("ASF timeout must be positive, got %s", c.ASF.Timeout)
	}

	if c.Subscription.Name == "" {
		return fmt.Errorf("subscription name is required")
	}
	if c.Subscription.Path < 0 {
		return fmt.Errorf("subscription path must be non-negative, got %d", c.Subscription.Path)
	}
	switch c.Subscription.FlightDirection {
	case "", "ASCENDING", "DESCENDING":
	default:
		return fmt.Errorf("flight direction must be ASCENDING or DESCENDING, got %q", c.Subscription.FlightDirection)
	}
	if _, _, err := c.Subscription.DateRange(); err != nil {
		return err
	}

	if c.Workspace.WorkDir == "" {
		return fmt.Errorf("work directory is required")
	}
	if c.Workspace.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	if c.Mosaic.Filename == "" {
		return fmt.Errorf("mosaic filename is required")
	}
	if c.Mosaic.TilePattern == "" {
		return fmt.Errorf("mosaic tile pattern is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, text", c.Logging.Format)
	}

	return nil
}

// DateRange parses the configured acquisition date bounds. The end bound is
// pushed to the last instant of its day so a single-day range covers the
// whole day.
func (s *SubscriptionConfig) DateRange() (start, end *time.Time, err error) {
	if s.Start != "" {
		t, parseErr := time.Parse(dateLayout, s.Start)
		if parseErr != nil {
			return nil, nil, fmt.Errorf("invalid start date %q: %w", s.Start, parseErr)
		}
		start = &t
	}
	if s.End != "" {
		t, parseErr := time.Parse(dateLayout, s.End)
		if parseErr != nil {
			return nil, nil, fmt.Errorf("invalid end date %q: %w", s.End, parseErr)
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("end date %s is before start date %s", s.End, s.Start)
	}
	return start, end, nil
}
