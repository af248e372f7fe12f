package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ppiankov/fnd/internal/metrics"
	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/pipeline"
	"github.com/ppiankov/fnd/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analyzer is the part of the pipeline the API exposes
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) (*model.Report, error)
	AnalyzeURL(ctx context.Context, rawURL string) (*model.Report, error)
}

const (
	limiterPruneInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

// Server serves the analysis API
type Server struct {
	analyzer Analyzer
	renderer *pipeline.Renderer
	limiter  *worker.Limiter
	logger   *slog.Logger
	config   model.ServerConfig
	router   *mux.Router
}

// NewServer wires routes and middleware
func NewServer(cfg *model.Config, analyzer Analyzer, renderer *pipeline.Renderer, logger *slog.Logger) *Server {
	metrics.InitMetrics()

	s := &Server{
		analyzer: analyzer,
		renderer: renderer,
		limiter:  worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		logger:   logger,
		config:   cfg.Server,
		router:   mux.NewRouter(),
	}

	s.router.HandleFunc("/api/v1/health", s.Health).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/analyze", s.Analyze).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/report", s.Report).Methods(http.MethodPost)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.authMiddleware)
	s.router.Use(s.rateLimitMiddleware)

	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	go s.pruneLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fnd API listening", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// pruneLimiter drops idle client buckets until ctx is done
func (s *Server) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Prune(limiterMaxIdle); n > 0 {
				s.logger.Debug("pruned idle rate limiters", "count", n)
			}
		}
	}
}
