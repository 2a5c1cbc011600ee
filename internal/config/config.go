// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/roster-retention/internal/layout"
)

// Environment variables read by FromEnv.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvHistoryPath = "RETENTION_HISTORY_PATH"
	EnvPort        = "PORT"
)

// DefaultPort is the REST server port used when none is configured.
const DefaultPort = "8080"

// Config represents the CLI configuration that can be loaded from a JSON, YAML or TOML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Earlier string `json:"earlier,omitempty" yaml:"earlier,omitempty" toml:"earlier,omitempty"` // Path to the earlier roster PDF
	Current string `json:"current,omitempty" yaml:"current,omitempty" toml:"current,omitempty"` // Path to the current roster PDF

	// Outputs
	CSVOut  string `json:"csv_out,omitempty" yaml:"csv_out,omitempty" toml:"csv_out,omitempty"`
	XLSXOut string `json:"xlsx_out,omitempty" yaml:"xlsx_out,omitempty" toml:"xlsx_out,omitempty"`
	JSONOut string `json:"json_out,omitempty" yaml:"json_out,omitempty" toml:"json_out,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty" toml:"database_url,omitempty"` // PostgreSQL connection URL
	HistoryPath string `json:"history_path,omitempty" yaml:"history_path,omitempty" toml:"history_path,omitempty"` // SQLite history file

	// Behavior
	RowTolerance float64 `json:"row_tolerance,omitempty" yaml:"row_tolerance,omitempty" toml:"row_tolerance,omitempty" validate:"gte=0"`
	Port         string  `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty" validate:"omitempty,numeric"`
	Verbose      bool    `json:"verbose,omitempty" yaml:"verbose,omitempty" toml:"verbose,omitempty"`

	// Dropout filter
	Search string `json:"search,omitempty" yaml:"search,omitempty" toml:"search,omitempty" validate:"max=200"`
	Shift  string `json:"shift,omitempty" yaml:"shift,omitempty" toml:"shift,omitempty" validate:"omitempty,oneof=All Mañana Tarde Vespertino Noche Otro"`
}

// LoadConfig loads configuration from a file. The decoder is chosen by extension:
// .json, .yaml/.yml or .toml.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Earlier != "" {
		if _, err := os.Stat(c.Earlier); os.IsNotExist(err) {
			return fmt.Errorf("config error: earlier roster not found: %s", c.Earlier)
		}
	}
	if c.Current != "" {
		if _, err := os.Stat(c.Current); os.IsNotExist(err) {
			return fmt.Errorf("config error: current roster not found: %s", c.Current)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Earlier == "" {
		result.Earlier = defaults.Earlier
	}
	if result.Current == "" {
		result.Current = defaults.Current
	}
	if result.CSVOut == "" {
		result.CSVOut = defaults.CSVOut
	}
	if result.XLSXOut == "" {
		result.XLSXOut = defaults.XLSXOut
	}
	if result.JSONOut == "" {
		result.JSONOut = defaults.JSONOut
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.HistoryPath == "" {
		result.HistoryPath = defaults.HistoryPath
	}
	if result.Search == "" {
		result.Search = defaults.Search
	}
	if result.Shift == "" {
		result.Shift = defaults.Shift
	}
	if result.Port == "" {
		if defaults.Port != "" {
			result.Port = defaults.Port
		} else {
			result.Port = DefaultPort
		}
	}

	// Float fields
	if result.RowTolerance == 0 {
		if defaults.RowTolerance > 0 {
			result.RowTolerance = defaults.RowTolerance
		} else {
			result.RowTolerance = layout.DefaultRowTolerance
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FromEnv returns a Config holding the values set in the environment.
func FromEnv() Config {
	return Config{
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		HistoryPath: os.Getenv(EnvHistoryPath),
		Port:        os.Getenv(EnvPort),
	}
}
