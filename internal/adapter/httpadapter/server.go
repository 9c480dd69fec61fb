package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotService is the read side of the pipeline served over HTTP.
type SnapshotService interface {
	sharedobs.ReadinessChecker
	Current() *domain.Snapshot
	Trigger() bool
}

// Server exposes the trajectory API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        SnapshotService
	logger     *slog.Logger
}

// Route mounts an extra handler on the server's mux.
type Route struct {
	Pattern string
	Handler http.Handler
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and
// /metrics routes. extra routes, such as the upstream relay, are mounted as given.
func NewServer(addr string, svc SnapshotService, logger *slog.Logger, extra ...Route) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/trajectories", s.handleTrajectories)
	mux.HandleFunc("GET /api/trajectories/{id}", s.handleTrajectory)
	mux.HandleFunc("GET /api/window", s.handleWindow)
	mux.HandleFunc("GET /api/export.csv", s.handleExport)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	for _, r := range extra {
		mux.Handle(r.Pattern, r.Handler)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
