// Package config loads the optional TOML configuration file that supplies
// CLI defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the user-tunable defaults for merge and output behavior.
type Config struct {
	// Strategy is the default duplicate-detection strategy.
	Strategy string `toml:"strategy"`
	// CoordinateTolerance is the default duplicate distance in pixels.
	CoordinateTolerance float64 `toml:"coordinate_tolerance"`
	// PhotoMatchThreshold is the default shared-filename fraction.
	PhotoMatchThreshold float64 `toml:"photo_match_threshold"`
	// PhotoConflicts selects collision handling: "skip" or "keep-both".
	PhotoConflicts string `toml:"photo_conflicts"`
	// DBPath is the sqlite file backing the sets commands.
	DBPath string `toml:"db_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// LogFile optionally tees logs to a file.
	LogFile string `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Strategy:            "coordinates",
		CoordinateTolerance: 5,
		PhotoMatchThreshold: 0.7,
		PhotoConflicts:      "skip",
		DBPath:              defaultDBPath(),
		LogLevel:            "info",
	}
}

// Load reads the config file at path, applying it over the defaults. A
// missing file is not an error: the defaults are returned. An empty path
// resolves to ~/.marker-migrate/config.toml. The MARKER_MIGRATE_LOG_LEVEL
// environment variable overrides the configured log level.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".marker-migrate", "config.toml")
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return Config{}, err
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if lvl := os.Getenv("MARKER_MIGRATE_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "marker-migrate.db"
	}
	return filepath.Join(home, ".marker-migrate", "library.db")
}
