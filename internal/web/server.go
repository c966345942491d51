// Package web provides the HTTP server and routing
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"download-portal/internal/config"
	"download-portal/internal/web/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	origin string
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, h *handlers.Handlers) *Server {
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewRouter(h, cfg.AdminKeyHash),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server: server,
		origin: cfg.PublicOrigin,
		logger: slog.Default(),
	}
}

// NewRouter wires every route to its handler
func NewRouter(h *handlers.Handlers, adminKeyHash string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(slog.Default()))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	// Download pages
	r.Post("/games/{gameId}/download", h.RedirectDownload)
	r.Get("/download/{gameId}", h.DownloadPage)
	r.Post("/download/{gameId}/unlock", h.UnlockPage)

	r.Route("/api", func(r chi.Router) {
		r.Post("/download-pages", h.CreatePage)
		r.Get("/download-pages", h.ResolvePage)
		r.Post("/download-pages/cleanup", h.CleanupPages)

		r.Post("/games/{gameId}/download", h.InitiateDownload)
		r.Get("/games/{gameId}/clouds", h.ListClouds)

		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAdminKey(adminKeyHash))
			r.Put("/admin/games/{gameId}", h.UpsertGame)
		})
	})

	return r
}

// requestLogger logs one line per request with the chi request id
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		"addr", s.server.Addr,
		"public_origin", s.origin)

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
