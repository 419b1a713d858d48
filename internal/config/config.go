// Package config provides unified configuration loading for specline.
// Supports YAML files, environment variables, and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/catalogforge/specline/internal/record"
)

// Config holds all configuration for a populate run.
type Config struct {
	Extraction    ExtractionConfig    `yaml:"extraction"`
	Fields        record.FieldMapping `yaml:"fields"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ExtractionConfig holds extraction policy settings.
type ExtractionConfig struct {
	// Overwrite recomputes spec lists for records that already have one.
	Overwrite bool `yaml:"overwrite"`
	// MaxEntries caps the final spec list length; zero means unlimited.
	MaxEntries int `yaml:"max_entries"`
	// RulesPath points at a YAML rules file; empty uses the built-in set.
	RulesPath string `yaml:"rules_path"`
}

// StoreConfig holds result store settings. The store is optional; it is
// only opened when a command asks for persistence.
type StoreConfig struct {
	Driver          string        `yaml:"driver"` // sqlite or postgres
	SQLitePath      string        `yaml:"sqlite_path"`
	PostgresDSN     string        `yaml:"postgres_dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json or console
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	// Load .env if present (ignore errors; the file is optional).
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults. The field
// mapping matches a Matrixify-style product export.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Overwrite:  false,
			MaxEntries: 0,
		},
		Fields: record.FieldMapping{
			Handle: "Handle",
			Sources: []record.FieldSource{
				{Name: "title", Column: "Title", Kind: record.KindText},
				{Name: "body", Column: "Body HTML", Kind: record.KindHTML},
				{Name: "bulletpoints", Column: "Bulletpoints", Kind: record.KindRichText},
			},
			Metadata: record.MetadataColumns{
				Material: "Metafield: custom.product_material",
				Size:     "Metafield: custom.product_size",
				Vendor:   "Vendor",
				Type:     "Type",
			},
			Dimensions: record.DimensionColumns{
				Width:  "Width",
				Height: "Height",
				Depth:  "Depth",
			},
			SpecList: "Metafield: custom.spec_list",
		},
		Store: StoreConfig{
			Driver:          "sqlite",
			SQLitePath:      "specline.db",
			MaxOpenConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		return fmt.Errorf("invalid store driver: %s", c.Store.Driver)
	}
	if c.Extraction.MaxEntries < 0 {
		return fmt.Errorf("max_entries must not be negative")
	}
	if c.Fields.Handle == "" {
		return fmt.Errorf("fields.handle column is required")
	}
	if len(c.Fields.Sources) == 0 {
		return fmt.Errorf("at least one source field is required")
	}
	for _, src := range c.Fields.Sources {
		if src.Column == "" {
			return fmt.Errorf("source field %q has no column", src.Name)
		}
		if !src.Kind.Valid() {
			return fmt.Errorf("source field %q has unknown kind %q", src.Name, src.Kind)
		}
	}
	return nil
}

// StoreDSN returns the connection string for the configured driver.
func (c *Config) StoreDSN() string {
	if c.Store.Driver == "sqlite" {
		return c.Store.SQLitePath
	}
	return c.Store.PostgresDSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPECLINE_OVERWRITE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Extraction.Overwrite = b
		}
	}
	if v := os.Getenv("SPECLINE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Extraction.MaxEntries = n
		}
	}
	if v := os.Getenv("SPECLINE_RULES_PATH"); v != "" {
		cfg.Extraction.RulesPath = v
	}
	if v := os.Getenv("SPECLINE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("SPECLINE_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("SPECLINE_POSTGRES_DSN"); v != "" {
		cfg.Store.Driver = "postgres"
		cfg.Store.PostgresDSN = v
	}
	if v := os.Getenv("SPECLINE_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("SPECLINE_LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
