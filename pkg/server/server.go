package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"arcade/internal/aggregate"
	"arcade/pkg/logger"
)

// GameSource is the aggregation pipeline the API serves from.
type GameSource interface {
	ListBasic(ctx context.Context, limit int) ([]aggregate.BasicGame, error)
	ListFull(ctx context.Context, limit int) ([]aggregate.FullGame, error)
	Get(ctx context.Context, gameID string) (aggregate.FullGame, error)
}

// Server exposes the games API plus health checks and metrics
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// New creates a new Server instance
func New(addr string, source GameSource, l *logger.Logger) *Server {
	s := &Server{logger: l}

	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	h := &gamesHandler{source: source, logger: l}
	r.Get("/api/games", h.list)
	r.Get("/api/games/{gameID}", h.get)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
