// Package web provides the HTTP server and handlers for the schema editor,
// data entry form, data viewer and JSON API.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/schemaform/internal/config"
	"github.com/JonMunkholm/schemaform/internal/core"
	appmw "github.com/JonMunkholm/schemaform/internal/web/middleware"
)

// Server is the HTTP server for the application.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *appmw.RateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(appmw.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = appmw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.limiter.Reject = func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, r, core.ErrRateLimited, http.StatusTooManyRequests)
		}
		s.router.Use(s.limiter.Handler)
	}

	s.router.Use(appmw.ClientContext)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/data", http.StatusFound)
	})
	s.router.Get("/schema", s.handleSchemaEditor)
	s.router.Post("/schema", s.handleSchemaEditorAction)
	s.router.Get("/entry", s.handleEntryForm)
	s.router.Post("/entry", s.handleEntrySubmit)
	s.router.Get("/data", s.handleDataViewer)
	s.router.Get("/data/export.csv", s.handleExport)

	s.router.Get("/healthz", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/schema", s.handleGetSchema)
		r.Put("/schema", s.handlePutSchema)
		r.Get("/data", s.handleGetData)
		r.Post("/data", s.handlePostData)
		r.Post("/suggest", s.handleSuggest)
		r.Post("/reset", s.handleReset)
	})
}

// Start begins listening for HTTP requests on the configured address.
// It returns http.ErrServerClosed as soon as Shutdown begins; callers must
// wait for Shutdown to return before releasing resources.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	slog.Info("starting server", "addr", ln.Addr().String())
	return s.server.Serve(ln)
}

// Shutdown stops accepting connections, waits for in-flight handlers to
// return, then waits for any gated save, submit or suggestion still running.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}

	err := s.server.Shutdown(ctx)

	if active := s.service.Gate().ActiveCount(); active > 0 {
		slog.Info("waiting for in-flight requests", "active", active)
		if drainErr := s.service.Gate().WaitForDrain(ctx); drainErr != nil {
			slog.Warn("in-flight requests did not finish in time", "error", drainErr)
			if err == nil {
				err = drainErr
			}
		}
	}
	return err
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
