// Package server assembles the router, middleware stack and API into a
// runnable HTTP server.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/demo-backend/internal/api"
	"github.com/janisto/demo-backend/internal/config"
	"github.com/janisto/demo-backend/internal/http/health"
	"github.com/janisto/demo-backend/internal/http/routes"
	applog "github.com/janisto/demo-backend/internal/platform/logging"
	"github.com/janisto/demo-backend/internal/platform/metrics"
	appmiddleware "github.com/janisto/demo-backend/internal/platform/middleware"
	"github.com/janisto/demo-backend/internal/platform/respond"
)

// MetricsPath is where Prometheus metrics are served when enabled.
const MetricsPath = "/metrics"

const maxRequestBytes = 1 << 20 // 1 MB

// Server holds the assembled router and API for one configuration.
type Server struct {
	cfg     *config.Config
	router  chi.Router
	api     huma.API
	metrics *metrics.Collector
}

// New builds the router, installs the middleware stack and registers all
// routes. With cfg.Testing set, no panic recovery is installed.
func New(cfg *config.Config, version string) *Server {
	s := &Server{cfg: cfg, router: chi.NewRouter()}
	s.router.NotFound(respond.NotFoundHandler())
	s.router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	s.router.Use(
		appmiddleware.Security(cfg.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.AllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For. Only deploy behind a
		// trusted reverse proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxRequestBytes),
		// GetHead answers HEAD on GET-only routes.
		chimiddleware.GetHead,
		applog.RequestLogger(),
		applog.AccessLogger(health.Path, MetricsPath),
	)
	if cfg.MetricsEnabled {
		s.metrics = metrics.NewCollector()
		s.router.Use(s.metrics.Middleware())
	}
	if !cfg.Testing {
		s.router.Use(respond.Recoverer())
	}

	s.api = humachi.New(s.router, api.NewConfig(version, cfg.DocsPath))
	routes.Register(s.api)

	s.router.Get(health.Path, health.Handler)
	s.router.Head(health.Path, health.Handler)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, MetricsPath, s.metrics.Handler())
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// API returns the huma API the routes are registered on.
func (s *Server) API() huma.API {
	return s.api
}

// Metrics returns the metrics collector, or nil when metrics are disabled.
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := s.httpServer()

	serveErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}
