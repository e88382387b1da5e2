// Package server exposes live analysis sessions over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/atlas/internal/metrics"
	"github.com/ziadkadry99/atlas/internal/session"
)

// DefaultWriteTimeout bounds a single frame write to a client.
const DefaultWriteTimeout = 10 * time.Second

// Config holds server configuration.
type Config struct {
	Port         int
	StaticDir    string        // optional frontend served at /
	AllowAll     bool          // allow all CORS and WebSocket origins (dev mode)
	WriteTimeout time.Duration // per-frame write deadline on /ws

	// Session is the template every connection's session is built from.
	Session session.Options
}

// Server accepts one streaming session per WebSocket connection.
type Server struct {
	cfg        Config
	metrics    *metrics.Registry
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. reg may be nil, in which case /metrics is not served.
func New(cfg Config, reg *metrics.Registry, logger *slog.Logger) *Server {
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		metrics: reg,
		logger:  logger,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Sessions outlive any request timeout.
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}

		if s.cfg.StaticDir != "" {
			r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
		}
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: /ws connections set a deadline per frame.
		IdleTimeout: 120 * time.Second,
	}

	s.logger.Info("atlas server listening", "addr", addr, "root", s.cfg.Session.Analysis.Walker.RootDir)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server. Open WebSocket sessions end when
// their clients disconnect.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
