// Package server provides the HTTP surface of the agent runtime.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/agentry-ai/agentry/internal/dispatch"
	"github.com/agentry-ai/agentry/internal/logging"
	"github.com/agentry-ai/agentry/internal/registry"
	"github.com/agentry-ai/agentry/internal/runstore"
)

// serviceName is reported by the service banner.
const serviceName = "Agentry Agent Runtime"

// Config holds server configuration.
type Config struct {
	// Host is the listen address. Empty binds all interfaces.
	Host         string
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RunTimeout bounds a single agent execution. Zero disables the
	// deadline.
	RunTimeout time.Duration

	// Version is reported by the service banner.
	Version string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for SSE
		RunTimeout:   60 * time.Second,
		Version:      "dev",
	}
}

// Server is the HTTP server. It serves read views from the registry,
// dispatches runs, and streams runtime events.
type Server struct {
	config     *Config
	router     *chi.Mux
	httpSrv    *http.Server
	reg        *registry.Registry
	dispatcher *dispatch.Dispatcher
	runs       *runstore.Store
}

// New creates a new Server instance. The run store may be nil, which
// disables the run history endpoints.
func New(cfg *Config, reg *registry.Registry, dispatcher *dispatch.Dispatcher, runs *runstore.Store) *Server {
	s := &Server{
		config:     cfg,
		router:     chi.NewRouter(),
		reg:        reg,
		dispatcher: dispatcher,
		runs:       runs,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// requestLogger logs each request through the shared zerolog logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
