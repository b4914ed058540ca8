// Package config defines the dashboard configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/abrezinsky/clubdash/internal/relay"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8081".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite cache file.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AdminPassword is the staff password; generated when empty.
	AdminPassword string `koanf:"admin_password"`

	// SheetID identifies the club spreadsheet. Empty disables remote sync.
	SheetID      string `koanf:"sheet_id"`
	SheetBaseURL string `koanf:"sheet_base_url"`

	// SheetWriteURL is the web-app endpoint rows are appended through.
	SheetWriteURL string `koanf:"sheet_write_url"`

	// SyncInterval is how often the roster is re-read. Zero disables the loop.
	SyncInterval time.Duration `koanf:"sync_interval"`

	SeasonYear        int    `koanf:"season_year"`
	ReferenceDistance int    `koanf:"reference_distance"`
	DefaultRuleset    string `koanf:"default_ruleset"`
	MaxCombinations   int    `koanf:"max_combinations"`

	// CSRFKey is a 32-byte key for form tokens; random per process when empty.
	CSRFKey string `koanf:"csrf_key"`

	// Keyboard enables the terminal shortcuts.
	Keyboard bool `koanf:"keyboard"`

	// Benchmarks holds the competitiveness targets per stroke mode.
	Benchmarks map[string]relay.BenchmarkTable `koanf:"benchmarks"`
}

// New returns a Config holding the defaults
func New() *Config {
	bm := make(map[string]relay.BenchmarkTable)
	for mode, table := range relay.DefaultBenchmarks() {
		bm[string(mode)] = table
	}
	return &Config{
		Addr:              ":8081",
		DBPath:            "clubdash.db",
		LogLevel:          "info",
		SheetBaseURL:      "https://docs.google.com",
		SyncInterval:      15 * time.Minute,
		SeasonYear:        time.Now().Year(),
		ReferenceDistance: 50,
		DefaultRuleset:    "rfen",
		MaxCombinations:   relay.DefaultMaxCombinations,
		Keyboard:          true,
		Benchmarks:        bm,
	}
}

// Validate checks the values Load cannot repair
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.SeasonYear < 1900:
		return fmt.Errorf("%w: season_year %d is not a plausible year", ErrInvalidConfig, c.SeasonYear)
	case c.ReferenceDistance <= 0:
		return fmt.Errorf("%w: reference_distance must be positive", ErrInvalidConfig)
	case c.SyncInterval < 0:
		return fmt.Errorf("%w: sync_interval must not be negative", ErrInvalidConfig)
	case c.MaxCombinations < 0:
		return fmt.Errorf("%w: max_combinations must not be negative", ErrInvalidConfig)
	case c.CSRFKey != "" && len(c.CSRFKey) != 32:
		return fmt.Errorf("%w: csrf_key must be 32 bytes", ErrInvalidConfig)
	}
	return nil
}
