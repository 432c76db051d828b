package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/config"
	"github.com/villaops/villaops/src/llm"
	"github.com/villaops/villaops/src/opsagent"
	"github.com/villaops/villaops/src/resources"
	"github.com/villaops/villaops/src/server"
	"github.com/villaops/villaops/src/storage"
)

// ServeCmd starts the HTTP server
type ServeCmd struct {
	Addr string `help:"Listen address override, host:port"`
}

// Run executes the serve command
func (s *ServeCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)
	slog.SetDefault(logger)

	cfgPath := cli.Config
	if cfgPath == "" {
		cfgPath = config.GetDefaultConfigPath()
	}
	cfg, err := config.NewLoader(nil).Load(cfgPath)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("server.jwt_secret is required (or set %sJWT_SECRET)", config.EnvPrefix)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	client, err := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	store := resources.NewMemoryStore()
	toolbox, err := opsagent.NewToolbox(store, logger)
	if err != nil {
		return fmt.Errorf("failed to build toolbox: %w", err)
	}

	destructive := cfg.Agent.DestructiveTools
	if len(destructive) == 0 {
		destructive = opsagent.DestructiveTools()
	}

	runner, err := agent.NewRunner(agent.RunnerConfig{
		Client:       client,
		Toolbox:      toolbox,
		Gate:         agent.NewGate(destructive...),
		MaxSteps:     cfg.Agent.MaxSteps,
		SystemPrompt: opsagent.SystemPrompt,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		JWTSecret:   cfg.Server.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
		Model:       cfg.LLM.Model,
	}, db, runner, logger)

	return srv.Start()
}
