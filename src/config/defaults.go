package config

// DefaultConfig returns the baseline configuration before file and
// environment overrides.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr: ":8080",
		},
		LLM: LLMConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			TimeoutSeconds: 120,
		},
		Agent: AgentConfig{
			MaxSteps: 16,
		},
		Storage: StorageConfig{
			DatabasePath: GetDefaultStoragePaths().DatabasePath,
		},
	}
}
