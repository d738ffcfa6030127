// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/mapassist/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Store      StoreConfig      `mapstructure:"store"`
	Assist     AssistConfig     `mapstructure:"assist"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Output     OutputConfig     `mapstructure:"output"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// StoreConfig selects and configures the feature store.
type StoreConfig struct {
	Type       string `mapstructure:"type"`        // memory, sqlite
	Dataset    string `mapstructure:"dataset"`     // GeoJSON file loaded into the store
	SQLitePath string `mapstructure:"sqlite_path"` // Database file for type sqlite
}

// AssistConfig holds the tuning of the editing assistants.
type AssistConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	Level                string        `mapstructure:"level"` // Level being edited
	MaxRadius            float64       `mapstructure:"max_radius"`
	CorridorWidthFactor  float64       `mapstructure:"corridor_width_factor"`
	CorridorLengthFactor float64       `mapstructure:"corridor_length_factor"`
	CollinearTolerance   float64       `mapstructure:"collinear_tolerance"`
	SettleDelay          time.Duration `mapstructure:"settle_delay"`
}

// ProjectionConfig configures the planar projection.
type ProjectionConfig struct {
	// ReferenceLatitude fixes the latitude the Mercator scale is taken at.
	// When unset the center of the dataset is used.
	ReferenceLatitude *float64 `mapstructure:"reference_latitude"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Textfile  string `mapstructure:"textfile"` // Written on exit when set
}

// OutputConfig controls how commands print results.
type OutputConfig struct {
	Format string `mapstructure:"format"` // json, yaml
}

// Defaults sets the default configuration values.
func Defaults() {
	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Store defaults
	viper.SetDefault("store.type", "memory")
	viper.SetDefault("store.dataset", "")
	viper.SetDefault("store.sqlite_path", "./mapassist.db")

	// Assist defaults
	viper.SetDefault("assist.enabled", true)
	viper.SetDefault("assist.level", "")
	viper.SetDefault("assist.max_radius", 50.0)
	viper.SetDefault("assist.corridor_width_factor", 3.5)
	viper.SetDefault("assist.corridor_length_factor", 0.5)
	viper.SetDefault("assist.collinear_tolerance", 0.1)
	viper.SetDefault("assist.settle_delay", 100*time.Millisecond)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.namespace", "mapassist")
	viper.SetDefault("metrics.textfile", "")

	viper.SetDefault("output.format", "json")
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	// Environment variable binding
	viper.SetEnvPrefix("MAPASSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/mapassist")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	// Env-only keys are invisible to Unmarshal.
	if viper.IsSet("projection.reference_latitude") {
		lat := viper.GetFloat64("projection.reference_latitude")
		cfg.Projection.ReferenceLatitude = &lat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return &domain.ConfigError{Field: "store.sqlite_path", Message: "required for sqlite store"}
		}
	default:
		return &domain.ConfigError{Field: "store.type", Message: fmt.Sprintf("unknown store type %q", c.Store.Type)}
	}

	if c.Assist.MaxRadius <= 0 {
		return &domain.ConfigError{Field: "assist.max_radius", Message: "must be positive"}
	}
	if c.Assist.CorridorWidthFactor <= 0 || c.Assist.CorridorLengthFactor <= 0 {
		return &domain.ConfigError{Field: "assist.corridor_*_factor", Message: "must be positive"}
	}
	if c.Assist.CollinearTolerance <= 0 || c.Assist.CollinearTolerance >= 1 {
		return &domain.ConfigError{Field: "assist.collinear_tolerance", Message: "must be between 0 and 1"}
	}
	if c.Assist.SettleDelay < 0 {
		return &domain.ConfigError{Field: "assist.settle_delay", Message: "must not be negative"}
	}

	if lat := c.Projection.ReferenceLatitude; lat != nil && (*lat < -90 || *lat > 90) {
		return &domain.ConfigError{Field: "projection.reference_latitude", Message: fmt.Sprintf("%v is not a latitude", *lat)}
	}

	switch c.Output.Format {
	case "json", "yaml":
	default:
		return &domain.ConfigError{Field: "output.format", Message: fmt.Sprintf("unknown format %q", c.Output.Format)}
	}

	return nil
}
