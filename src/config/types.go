// Package config loads, merges, and validates the service configuration.
package config

// Config represents the complete configuration for villaops
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// LLM provider configuration
	LLM LLMConfig `json:"llm"`

	// Agent configuration
	Agent AgentConfig `json:"agent"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`
}

// ServerConfig defines the HTTP server settings
type ServerConfig struct {
	// Addr is the listen address, host:port
	Addr string `json:"addr" validate:"required"`

	// JWTSecret signs and verifies bearer tokens. Required to serve, but
	// not for offline commands like migrate
	JWTSecret string `json:"jwt_secret" validate:"omitempty,min=16"`

	// CORSOrigins lists allowed origins; empty allows all
	CORSOrigins []string `json:"cors_origins,omitempty"`
}

// LLMConfig defines the model provider settings
type LLMConfig struct {
	// BaseURL of an OpenAI-compatible chat completions API
	BaseURL string `json:"base_url" validate:"omitempty,url"`

	// APIKey for the provider. Usually set via VILLAOPS_API_KEY
	APIKey string `json:"api_key"`

	// Model identifier sent with every request. Required to serve
	Model string `json:"model"`

	// TimeoutSeconds bounds a single provider request
	TimeoutSeconds int `json:"timeout_seconds" validate:"omitempty,min=1"`
}

// AgentConfig defines the agent loop settings
type AgentConfig struct {
	// MaxSteps bounds model invocations per turn
	MaxSteps int `json:"max_steps" validate:"omitempty,min=1,max=64"`

	// DestructiveTools are the tool names that require a user decision
	// before executing. Empty means the built-in set
	DestructiveTools []string `json:"destructive_tools,omitempty"`
}

// StorageConfig defines where durable state lives
type StorageConfig struct {
	// DatabasePath is the sqlite file path
	DatabasePath string `json:"database_path"`
}
