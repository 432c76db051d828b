// Package server exposes the agent over HTTP: an SSE chat endpoint, the
// resume endpoint for suspended runs, and conversation CRUD.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/storage"
)

// Config holds the server settings.
type Config struct {
	Addr        string
	JWTSecret   string
	CORSOrigins []string
	// Model tags persisted assistant messages and usage records.
	Model string
}

// Server represents the API server
type Server struct {
	echo        *echo.Echo
	cfg         Config
	logger      *slog.Logger
	db          *storage.DB
	runner      *agent.Runner
	guard       *agent.ResumeGuard
	checkpoints *storage.Checkpoints
}

// New creates a new API server around an assembled runner.
func New(cfg Config, db *storage.DB, runner *agent.Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	server := &Server{
		echo:        e,
		cfg:         cfg,
		logger:      logger.With("component", "server"),
		db:          db,
		runner:      runner,
		guard:       agent.NewResumeGuard(),
		checkpoints: &storage.Checkpoints{DB: db.DB()},
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Echo exposes the underlying router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// API v1 group, bearer-token protected
	v1 := s.echo.Group("/api/v1", RequireAuth([]byte(s.cfg.JWTSecret)))

	v1.POST("/chat", s.handleChat)
	v1.POST("/chat/conversations/:id/resume", s.handleResume)
	v1.GET("/chat/conversations", s.listConversations)
	v1.GET("/chat/conversations/:id", s.getConversation)
	v1.DELETE("/chat/conversations/:id", s.deleteConversation)
}

// Start begins the API server and blocks until an interrupt, then shuts
// down gracefully.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(s.cfg.Addr); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	s.logger.Info("server listening", "addr", s.cfg.Addr)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}
