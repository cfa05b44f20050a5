// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/avisanghavi/clout/internal/llm"
)

// Environment variables consulted when a value is not set in the config file or by a flag.
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
	EnvModel       = "CLOUT_MODEL"
	EnvTemperature = "CLOUT_TEMPERATURE"
)

// DefaultConcurrency is the number of messages composed in parallel.
const DefaultConcurrency = 4

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// LLM
	APIKey            string  `json:"api_key,omitempty"`             // Gemini API key
	Model             string  `json:"model,omitempty"`               // Overrides the standard-tier model
	Temperature       float64 `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	LLMTimeoutSeconds int     `json:"llm_timeout_seconds,omitempty" validate:"gte=0"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" validate:"gte=0"`

	// Pipeline
	Concurrency int    `json:"concurrency,omitempty" validate:"gte=0,lte=64"`
	Seed        *int64 `json:"seed,omitempty"` // Fixed seed for the simulated mutual-connection finder

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; SQLite is used when empty
	DataDir     string `json:"data_dir,omitempty"`     // SQLite data directory

	// Output
	LogFile string `json:"log_file,omitempty"` // Rotated JSON log file
	Verbose bool   `json:"verbose,omitempty"`  // Print detailed debug information
}

var validate = validator.New()

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
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
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Temperature:       llm.DefaultTemperature,
		LLMTimeoutSeconds: int(llm.DefaultTimeout / time.Second),
		Concurrency:       DefaultConcurrency,
	}
}

// ApplyEnv fills empty fields from the environment using lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if c.APIKey == "" {
		if v, ok := lookup(EnvAPIKey); ok {
			c.APIKey = strings.TrimSpace(v)
		}
	}
	if c.DatabaseURL == "" {
		if v, ok := lookup(EnvDatabaseURL); ok {
			c.DatabaseURL = strings.TrimSpace(v)
		}
	}
	if c.Model == "" {
		if v, ok := lookup(EnvModel); ok {
			c.Model = strings.TrimSpace(v)
		}
	}
	if c.Temperature == 0 {
		if v, ok := lookup(EnvTemperature); ok && strings.TrimSpace(v) != "" {
			t, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("config error: %s must be a number: %w", EnvTemperature, err)
			}
			c.Temperature = t
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' failed the %s=%s check", jsonName(fe.Field()), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: data_dir is not a directory: %s", c.DataDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}

	// Numeric fields: use default if zero
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.LLMTimeoutSeconds == 0 {
		result.LLMTimeoutSeconds = defaults.LLMTimeoutSeconds
	}
	if result.RequestsPerSecond == 0 {
		result.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.Seed == nil {
		result.Seed = defaults.Seed
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMTimeout returns the per-call generation timeout.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return llm.DefaultTimeout
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// LLM returns the model configuration with the configured model and temperature applied.
func (c *Config) LLM() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.Model)
	}
	if c.Temperature > 0 {
		cfg.Temperature = float32(c.Temperature)
	}
	cfg.Timeout = c.LLMTimeout()
	return cfg
}

func jsonName(field string) string {
	switch field {
	case "LLMTimeoutSeconds":
		return "llm_timeout_seconds"
	case "RequestsPerSecond":
		return "requests_per_second"
	default:
		return strings.ToLower(field)
	}
}
