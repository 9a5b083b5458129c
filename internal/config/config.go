// Package config loads the astrogen YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/BaptisteVlt/astrology-generator/internal/ephem"
	"github.com/BaptisteVlt/astrology-generator/internal/logging"
	"github.com/BaptisteVlt/astrology-generator/internal/zodiac"
)

// Environment variables that override file values.
const (
	EnvProvider    = "ASTROGEN_PROVIDER"
	EnvTablePath   = "ASTROGEN_TABLE_PATH"
	EnvHorizonsURL = "ASTROGEN_HORIZONS_URL"
	EnvLogLevel    = "ASTROGEN_LOG_LEVEL"
	EnvOrb         = "ASTROGEN_ORB"
)

// Config is the top-level configuration.
type Config struct {
	Provider ephem.Config   `yaml:"provider"`
	Features FeaturesConfig `yaml:"features"`
	Batch    BatchConfig    `yaml:"batch"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// FeaturesConfig tunes feature extraction.
type FeaturesConfig struct {
	Orb float64 `yaml:"orb"`
}

// BatchConfig tunes batch runs.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ephem.DefaultConfig(),
		Features: FeaturesConfig{Orb: zodiac.DefaultOrb},
		Batch:    BatchConfig{Workers: 4},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Features.Orb < 0 {
		return fmt.Errorf("features.orb must be non-negative, got %v", c.Features.Orb)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Provider.Mode == ephem.ModeTable && c.Provider.Table.Path == "" {
		return errors.New("provider.table.path is required in table mode")
	}
	return nil
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvProvider); v != "" {
		c.Provider.Mode = ephem.ParseMode(v)
	}
	if v := os.Getenv(EnvTablePath); v != "" {
		c.Provider.Table.Path = v
	}
	if v := os.Getenv(EnvHorizonsURL); v != "" {
		c.Provider.Horizons.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvOrb); v != "" {
		orb, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOrb, err)
		}
		c.Features.Orb = orb
	}
	return nil
}
