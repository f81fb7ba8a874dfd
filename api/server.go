package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"

	"github.com/colada-chain/colada/internal/sandbox"
)

// Server is the read-only quote API over a pool manager sandbox
type Server struct {
	router *gin.Engine
	app    *sandbox.App
	config *Config
	logger log.Logger

	// the sandbox stores are not safe for concurrent use
	mu sync.Mutex
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            string
	CORSOrigins     []string
	RateLimitRPS    int
	RateLimitBurst  int
	MetricsEnabled  bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            "5000",
		CORSOrigins:     []string{"http://localhost:3000"},
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		MetricsEnabled:  true,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  10 * time.Second,
	}
}

// NewServer creates a new API server instance
func NewServer(app *sandbox.App, config *Config, logger log.Logger) (*Server, error) {
	if app == nil {
		return nil, errors.New("api: nil sandbox")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("api: rate limit must be positive, got %d", config.RateLimitRPS)
	}
	if config.RateLimitBurst < config.RateLimitRPS {
		config.RateLimitBurst = config.RateLimitRPS
	}

	server := &Server{
		app:    app,
		config: config,
		logger: logger.With("module", "api"),
	}
	server.setupRouter()
	return server, nil
}

// setupRouter configures the Gin router with all routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()

	// Global middleware - ORDER MATTERS!
	s.router.Use(gin.Recovery())
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware(s.config.CORSOrigins))
	s.router.Use(RateLimitMiddleware(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(TimeoutMiddleware(s.config.RequestTimeout))

	s.registerRoutes()
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	s.mu.Lock()
	height := s.app.Height()
	blockTime := s.app.BlockTime()
	s.mu.Unlock()

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Height:    height,
		BlockTime: blockTime.Unix(),
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:        s.router,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting quote API", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down quote API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// withApp runs fn against the sandbox under the server lock unless the
// request deadline passed while waiting for it.
func (s *Server) withApp(ctx context.Context, fn func(app *sandbox.App) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.app)
}
