// Package server exposes the blog over HTTP: JSON API, locale-prefixed
// pages, sitemap, robots.txt and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/blog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	site    models.SiteConfig
	blog    *blog.Service
	logger  *slog.Logger
	metrics *Metrics
	router  chi.Router
	now     func() time.Time
}

func New(svc *blog.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		site:    svc.Site,
		blog:    svc,
		logger:  logger,
		metrics: NewMetrics(),
		now:     time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/robots.txt", s.handleRobots)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/blog", s.handleAPIList)
		r.Get("/blog/{slug}", s.handleAPIPost)
		r.Get("/tags", s.handleAPITags)
		r.Post("/revalidate", s.handleRevalidate)
	})

	// default locale without prefix, the others under /{locale}
	r.Get("/", s.handleIndex)
	r.Get("/blog", s.handleIndex)
	r.Get("/blog/{slug}", s.handlePost)
	r.Get("/{locale}", s.handleIndex)
	r.Get("/{locale}/blog", s.handleIndex)
	r.Get("/{locale}/blog/{slug}", s.handlePost)

	r.NotFound(s.handleNotFound)
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
