package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/afero"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "VILLAOPS_"

// Loader handles loading and merging configuration from defaults, an
// optional JSON file, and environment overrides.
type Loader struct {
	fs        afero.Fs
	validator *Validator
}

// NewLoader creates a new configuration loader. fs defaults to the OS
// filesystem; tests pass a MemMapFs.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{
		fs:        fs,
		validator: NewValidator(),
	}
}

// Load loads configuration. A missing file is not an error; the defaults
// plus environment overrides still apply.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		override, err := l.loadFile(path)
		switch {
		case err == nil:
			config = l.mergeConfigs(config, override)
		case os.IsNotExist(err):
			// defaults only
		default:
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	l.applyEnvironmentOverrides(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// loadFile loads a single configuration file
func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &config, nil
}

// mergeConfigs merges two configurations with the second taking precedence
func (l *Loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	if override.Server.Addr != "" {
		result.Server.Addr = override.Server.Addr
	}
	if override.Server.JWTSecret != "" {
		result.Server.JWTSecret = override.Server.JWTSecret
	}
	if len(override.Server.CORSOrigins) > 0 {
		result.Server.CORSOrigins = override.Server.CORSOrigins
	}

	if override.LLM.BaseURL != "" {
		result.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.APIKey != "" {
		result.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Model != "" {
		result.LLM.Model = override.LLM.Model
	}
	if override.LLM.TimeoutSeconds != 0 {
		result.LLM.TimeoutSeconds = override.LLM.TimeoutSeconds
	}

	if override.Agent.MaxSteps != 0 {
		result.Agent.MaxSteps = override.Agent.MaxSteps
	}
	if len(override.Agent.DestructiveTools) > 0 {
		result.Agent.DestructiveTools = override.Agent.DestructiveTools
	}

	if override.Storage.DatabasePath != "" {
		result.Storage.DatabasePath = override.Storage.DatabasePath
	}

	return &result
}

// applyEnvironmentOverrides applies VILLAOPS_* environment variables
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv(EnvPrefix + "ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "JWT_SECRET"); v != "" {
		config.Server.JWTSecret = v
	}
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		config.LLM.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "API_KEY"); v != "" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "MODEL"); v != "" {
		config.LLM.Model = v
	}
	if v := os.Getenv(EnvPrefix + "DATABASE_PATH"); v != "" {
		config.Storage.DatabasePath = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Agent.MaxSteps = n
		}
	}
}
