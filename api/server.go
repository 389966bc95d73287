// Package api exposes the query pipeline over HTTP.
//
// Endpoints:
//
//	POST /api/query              run a natural-language question
//	POST /api/feedback           record a thumbs up/down vote
//	GET  /api/feedback/stats     overall feedback statistics
//	GET  /api/feedback/failures  question patterns that keep failing
//	GET  /api/schema             rendered database schema
//	GET  /health                 liveness probe
//	GET  /ready                  readiness probe
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlmind/sqlmind/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:3400"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Pipeline runs include one model call plus query execution, so this
	// is sized above both stage timeouts combined.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum wait for the next keep-alive request.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the query API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health   *HealthHandler
	query    *QueryHandler
	feedback *FeedbackHandler
	schema   *SchemaHandler
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(runner QueryRunner, store FeedbackStore, source SchemaSource, pool *pgxpool.Pool, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		health:   NewHealthHandler(pool, logger),
		query:    NewQueryHandler(runner, logger),
		feedback: NewFeedbackHandler(store, logger),
		schema:   NewSchemaHandler(source, logger),
	}

	s.health.RegisterRoutes(mux)
	s.query.RegisterRoutes(mux)
	s.feedback.RegisterRoutes(mux)
	s.schema.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger))
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
