package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports storage backend health, used by the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter assembles the API routes with their middleware chains.
func NewRouter(h *Handler, secret []byte, db Pinger, logger logging.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(Observe)
	r.Use(RequestLogger(logger))

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/files", func(r chi.Router) {
		r.Use(RequireAuth(secret))
		r.Get("/", h.ListFiles)
		r.Post("/upload-url", h.RequestUploadURL)
		r.Get("/{fileID}/download-url", h.RequestDownloadURL)
	})

	r.Route("/internal/v1", func(r chi.Router) {
		r.Use(RequireAuth(secret))
		r.Use(RequireInternal)
		r.Patch("/files/{fileID}/status", h.UpdateFileStatus)
		r.Post("/events/object-created", h.ObjectCreated)
	})

	return r
}

// Server wraps the HTTP listener with sane timeouts and graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

func NewServer(addr string, router chi.Router, logger logging.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger.With("module", "http_server"),
	}
}

// Run blocks serving requests until the listener is closed.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
