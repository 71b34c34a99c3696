// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/inodb/vibe-risk/internal/analyze"
	"github.com/inodb/vibe-risk/internal/catalog"
	"github.com/inodb/vibe-risk/internal/config"
	"github.com/inodb/vibe-risk/internal/report"
	"github.com/inodb/vibe-risk/internal/risk"
)

// ReportAssembler renders classified results into a report document.
type ReportAssembler interface {
	Assemble(results []risk.Classified) (*report.Document, error)
}

// Deps are the pipeline components the server calls.
type Deps struct {
	Orchestrator *analyze.Orchestrator
	Classifier   *risk.Classifier
	Assembler    ReportAssembler
	Catalog      *catalog.Catalog
	// ExternalEnabled is reported by /health.
	ExternalEnabled bool
}

// Server is the HTTP server.
type Server struct {
	cfg     config.ServerConfig
	deps    Deps
	router  *gin.Engine
	server  *http.Server
	limiter *rate.Limiter
	logger  *zap.Logger
	started time.Time
}

// New creates a server and registers its routes.
func New(cfg config.ServerConfig, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		router:  router,
		logger:  logger,
		started: time.Now(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))
	router.Use(gin.CustomRecovery(s.recovery))

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.cfg.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.GET("/catalog", s.handleCatalog)
	{
		limited := v1.Group("", s.rateLimitMiddleware())
		limited.POST("/analyze", s.handleAnalyze)
		limited.POST("/report", s.handleReport)
	}
}

func (s *Server) recovery(c *gin.Context, recovered any) {
	s.logger.Error("panic in handler",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Any("panic", recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
