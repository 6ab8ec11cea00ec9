// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/config"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/health"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/logging"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/metrics"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/model"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/pipeline"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/ratelimit"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/rules"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/security"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/traces"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/validation"
)

// Version is set by ldflags at build time.
var Version = "0.1.0"

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg         *config.Config
	pipeline    *pipeline.Pipeline
	mdl         *model.Model // nil when running the rule-based strategy
	healthReg   *health.Registry
	rateLimiter *ratelimit.Limiter
	router      *gin.Engine
	httpSrv     *http.Server
	logger      *slog.Logger

	cancelRunCtx   context.CancelFunc // cancels background goroutines started in Run
	shutdownTraces func(context.Context) error

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPipeline overrides the assessment pipeline (for testing)
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Server) {
		s.pipeline = p
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		healthReg: health.NewRegistry(),
		logger:    logging.New(cfg.LogLevel, cfg.LogFormat),
	}

	// Apply options first (may set pipeline/logger)
	for _, opt := range opts {
		opt(s)
	}

	if s.pipeline == nil {
		if err := s.buildPipeline(); err != nil {
			return nil, err
		}
	}

	s.registerHealthCheckers()

	// Gin mode per environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// buildPipeline assembles the classification strategy and pipeline from
// configuration.
func (s *Server) buildPipeline() error {
	scorer := rules.NewScorer().WithThresholds(s.cfg.ThresholdLow, s.cfg.ThresholdMedium)

	bounds := validation.Bounds{
		VisibilityMax:  s.cfg.VisibilityMax,
		SpeedMax:       s.cfg.SpeedMax,
		WeatherOptions: s.cfg.WeatherOptions,
	}

	var classifier pipeline.Classifier
	switch s.cfg.Strategy {
	case "rules":
		classifier = pipeline.NewRuleBased(scorer)
	case "statistical":
		typ, err := model.ParseType(s.cfg.ModelType)
		if err != nil {
			return err
		}
		m, err := model.New(typ,
			model.WithLogger(s.logger),
			model.WithScales(s.cfg.VisibilityScale, s.cfg.SpeedScale),
			model.WithScorer(scorer),
		)
		if err != nil {
			return err
		}
		s.mdl = m
		classifier = pipeline.NewStatistical(m)
	default:
		return fmt.Errorf("unknown classifier strategy: %q", s.cfg.Strategy)
	}

	s.pipeline = pipeline.New(classifier,
		pipeline.WithBounds(bounds),
		pipeline.WithFallbackOnError(s.cfg.FallbackOnError),
	)
	return nil
}

func (s *Server) registerHealthCheckers() {
	s.healthReg.Register("classifier", func(ctx context.Context) health.Status {
		// Rule-based strategy has no training lifecycle
		if s.mdl == nil {
			return health.Status{Healthy: true, Detail: "rule_based"}
		}
		if !s.mdl.Trained() {
			return health.Status{Healthy: false, Detail: "model not trained"}
		}
		return health.Status{
			Healthy: true,
			Detail:  fmt.Sprintf("%s trained, accuracy %.3f", s.mdl.Type(), s.mdl.TrainingAccuracy()),
		}
	})
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS
	s.router.Use(security.CORSMiddleware(s.cfg.CORSOrigins))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	rlCfg := ratelimit.DefaultConfig()
	rlCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	s.rateLimiter = ratelimit.New(rlCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// Service info
	s.router.GET("/", s.infoHandler)
	s.router.GET("/model/info", s.modelInfoHandler)

	// Assessment
	s.router.POST("/assess-risk", s.assessHandler)
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the server and blocks until a shutdown signal or fatal error
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	shutdownTraces, err := traces.Init(runCtx, s.cfg.OTLPEndpoint, s.logger)
	if err != nil {
		s.logger.Warn("tracing init failed, continuing without traces", "error", err)
	} else {
		s.shutdownTraces = shutdownTraces
	}

	go metrics.StartRuntimeCollector(runCtx, 15*time.Second)

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"strategy", s.pipeline.Strategy(),
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Train the model before declaring readiness. Assessments arriving in
	// the window before Fit completes fail with a 500 rather than serving
	// an untrained model.
	go func() {
		if s.mdl != nil && s.cfg.TrainOnStartup {
			if err := s.mdl.Fit(); err != nil {
				s.logger.Error("model training failed", "error", err)
				s.healthy.Store(false)
				return
			}
		}
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for background goroutines
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Flush pending trace spans
	if s.shutdownTraces != nil {
		if err := s.shutdownTraces(ctx); err != nil {
			s.logger.Error("trace shutdown error", "error", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
