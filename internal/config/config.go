// Package config loads configuration for the vfs command.
//
// Configuration comes from a single YAML file selected by:
//   - the --config flag, or
//   - the VFS_CONFIG environment variable.
//
// There is no automatic discovery. Without either, Default is used.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "VFS_CONFIG"

// Config is the complete vfs command configuration.
type Config struct {
	// Log configures diagnostic output on stderr.
	Log LogConfig `yaml:"log"`

	// Store configures how archive stores are written.
	Store StoreConfig `yaml:"store"`
}

// LogConfig configures the command logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: warn
	Level string `yaml:"level"`

	// Format is one of auto, text, json. Auto picks text for terminals and
	// JSON otherwise.
	// Default: auto
	Format string `yaml:"format"`
}

// StoreConfig configures archive store writes.
type StoreConfig struct {
	// AtomicCommit rewrites the structure store through a temporary file
	// and rename.
	// Default: true
	AtomicCommit bool `yaml:"atomic_commit"`

	// Preallocate reserves block store disk space at creation.
	// Default: false
	Preallocate bool `yaml:"preallocate"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Default returns the configuration used when no file is given and the
// base that a file is merged onto.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "auto",
		},
		Store: StoreConfig{
			AtomicCommit: true,
		},
	}
}

// Load loads configuration from path, falling back to VFS_CONFIG. With
// neither set it returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates the configuration file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}
	return errors.Join(errs...)
}

// SlogLevel returns the slog level named by Log.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelWarn
	}
	return level
}
