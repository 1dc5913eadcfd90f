package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/tphakala/hogwarts-heroes/internal/api/middleware"
	"github.com/tphakala/hogwarts-heroes/internal/buildinfo"
	"github.com/tphakala/hogwarts-heroes/internal/character"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
	"github.com/tphakala/hogwarts-heroes/internal/observability"
	"github.com/tphakala/hogwarts-heroes/internal/quiz"
)

// CharacterService is the repository surface the API serves.
type CharacterService interface {
	GetAllCharacters(ctx context.Context) ([]character.Summary, error)
	SearchCharacters(ctx context.Context, query string) ([]character.Summary, error)
	FilterCharacters(ctx context.Context, params character.FilterParams) ([]character.Summary, error)
	GetCharacterDetails(ctx context.Context, id string) (*character.Detail, error)
	CacheStatus(ctx context.Context) character.CacheStatus
}

// Server is the HTTP server for the character API.
// It manages the Echo framework instance, middleware, and all HTTP routes.
type Server struct {
	// Core components
	echo   *echo.Echo
	config *Config
	log    logger.Logger

	// Dependencies
	characters CharacterService
	quiz       *quiz.Bank
	metrics    *observability.Metrics
	build      buildinfo.BuildInfo
	accessLog  logger.Logger

	startTime time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the application logger for the server.
func WithLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// WithAccessLogger routes per-request lines to a dedicated logger.
func WithAccessLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.accessLog = log
	}
}

// WithMetrics enables HTTP metrics and the /metrics endpoint.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithQuizBank enables the quiz endpoint.
func WithQuizBank(bank *quiz.Bank) ServerOption {
	return func(s *Server) {
		s.quiz = bank
	}
}

// WithBuildInfo sets the version reported by the health endpoint.
func WithBuildInfo(bi buildinfo.BuildInfo) ServerOption {
	return func(s *Server) {
		s.build = bi
	}
}

// New creates a new HTTP server serving characters from svc.
func New(config *Config, svc CharacterService, opts ...ServerOption) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	if svc == nil {
		return nil, fmt.Errorf("character service is required")
	}

	s := &Server{
		config:     config,
		characters: svc,
		startTime:  time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = logger.NewNopLogger()
	}
	if s.accessLog == nil {
		s.accessLog = s.log
	}
	if s.build == nil {
		s.build = &buildinfo.Context{}
	}

	// Initialize Echo
	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug

	// Configure Echo server timeouts
	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()
	s.setupRoutes()

	s.log.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.Bool("metrics", s.metrics != nil),
		logger.Bool("quiz", s.quiz != nil))

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	// Request IDs before logging so every line carries one
	s.echo.Use(mw.NewRequestID())
	s.echo.Use(mw.NewRequestLogger(s.accessLog))

	if s.metrics != nil {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}

	securityConfig := mw.SecurityConfig{
		AllowedOrigins:        s.config.AllowedOrigins,
		AllowCredentials:      false,
		HSTSMaxAge:            mw.HSTSMaxAge,
		HSTSExcludeSubdomains: false,
		ContentSecurityPolicy: "default-src 'none'",
	}

	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders(securityConfig))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	v1 := s.echo.Group("/api/v1")
	v1.GET("/health", s.healthCheck)

	chars := v1.Group("/characters")
	chars.GET("", s.listCharacters)
	chars.GET("/search", s.searchCharacters)
	chars.GET("/filter", s.filterCharacters)
	chars.GET("/fields", s.filterFields)
	chars.GET("/:id", s.characterDetails)

	v1.GET("/cache", s.cacheStatus)

	if s.quiz != nil {
		v1.GET("/quiz", s.quizQuestions)
	}

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
}

// healthCheck handles the server health check endpoint.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.build.GetVersion(),
		"build_date":     s.build.GetBuildDate(),
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.startBlocking()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutdown signal received, initiating graceful shutdown")
	}

	if err := s.Shutdown(); err != nil {
		return err
	}
	return <-errCh
}

// StartWithGracefulShutdown runs the server until SIGINT or SIGTERM.
func (s *Server) StartWithGracefulShutdown() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// startBlocking begins serving HTTP requests and blocks until the server is shut down.
func (s *Server) startBlocking() error {
	addr := s.config.Address()
	s.log.Info("Starting HTTP server", logger.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("Error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.log.Info("Server shutdown complete")
	return nil
}

// Echo returns the underlying Echo instance.
// This is useful for testing or advanced configuration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
