// File: internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pitist/mi-orquestador-mvp/internal/config"
	"github.com/pitist/mi-orquestador-mvp/web"
)

// compressionLevel applies to gzip, deflate and brotli alike.
const compressionLevel = 5

// Dependencies are the services the HTTP layer delegates to.
type Dependencies struct {
	Auditor Auditor
	Lean    LeanChecker
	Health  HealthProber
	// TracerProvider instruments incoming requests. Nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// Server hosts the audit API and the dashboard assets.
type Server struct {
	cfg      config.ServerConfig
	auth     config.AuthConfig
	logger   *zap.Logger
	handlers *Handlers
	assets   fs.FS
	handler  http.Handler
}

// New wires the router. It fails only when a dependency is missing.
func New(cfg config.Interface, logger *zap.Logger, deps Dependencies) (*Server, error) {
	if deps.Auditor == nil || deps.Lean == nil || deps.Health == nil {
		return nil, errors.New("server requires an auditor, a lean checker and a health prober")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("server")

	s := &Server{
		cfg:      cfg.Server(),
		auth:     cfg.Auth(),
		logger:   logger,
		handlers: NewHandlers(logger, deps.Auditor, deps.Lean, deps.Health),
	}
	s.assets = s.resolveAssets()

	tp := deps.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	s.handler = otelhttp.NewHandler(s.routes(), "orchestrator.http",
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(newCompressor(compressionLevel).Handler)

	r.NotFound(s.handlers.HandleNotFound)
	r.Get("/healthz", s.handlers.HandleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		var limiter *rate.Limiter
		if s.cfg.RateLimit > 0 {
			limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
		}
		r.Use(rateLimit(limiter, s.logger))
		if s.auth.RequireAPIKey {
			r.Use(requireAPIKey(s.auth.Header, s.auth.APIKey, s.logger))
		}

		r.Get("/audit", s.handlers.HandleAudit)
		r.Get("/lean_check", s.handlers.HandleLeanCheck)
	})

	r.Get("/", s.serveIndex)
	r.Handle("/static/*", http.FileServerFS(s.assets))

	return r
}

// resolveAssets picks the on-disk static directory when one is configured
// and present, and the embedded bundle otherwise.
func (s *Server) resolveAssets() fs.FS {
	dir := s.cfg.StaticDir
	if dir == "" {
		return web.Assets()
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("Static directory unavailable; serving embedded assets.", zap.String("path", dir), zap.Error(err))
		return web.Assets()
	}
	s.logger.Info("Serving static files from disk", zap.String("path", dir))
	return os.DirFS(dir)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := fs.Stat(s.assets, "index.html"); err != nil {
		s.handlers.HandleNotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, s.assets, "index.html")
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout. It takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.RequestTimeout,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server starting", zap.String("address", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down HTTP server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		s.logger.Info("HTTP server stopped.")
		return nil
	})
	return g.Wait()
}
