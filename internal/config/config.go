// Package config holds the CLI-level configuration for osmcache's
// commands. The cache and pointstorage packages themselves take no
// configuration beyond their constructor arguments (spec §6: "No CLI,
// environment variables, or persisted configuration at the core
// layer") — everything here lives one layer up, in cmd.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mapgen-tools/osmcache/internal/pointstorage"
)

// Config holds the settings shared by osmcache's CLI commands.
type Config struct {
	// Cache locations.
	OutputDir string `yaml:"output_dir"`

	// Point storage selection.
	PointStorage string `yaml:"point_storage"` // "raw", "mem", or "map"
	Preload      bool   `yaml:"preload"`

	// Processing settings.
	Workers int `yaml:"workers"`

	// Logging and metrics.
	Verbose         bool          `yaml:"verbose"`
	LogFile         string        `yaml:"log_file"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:       "./osmcache_data",
		PointStorage:    "raw",
		Workers:         runtime.NumCPU(),
		LogFile:         "",
		MetricsInterval: 30 * time.Second,
	}
}

// LoadFile merges YAML configuration from path into cfg. Fields absent
// from the file keep cfg's existing (default or flag-set) values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// PointStorageKind parses the configured point-storage strategy.
func (c *Config) PointStorageKind() (pointstorage.Kind, error) {
	return pointstorage.ParseKind(c.PointStorage)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if _, err := c.PointStorageKind(); err != nil {
		return err
	}
	return nil
}
