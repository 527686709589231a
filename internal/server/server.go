// Package server provides the HTTP front end: one HTML page and a JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rcliao/studylog/internal/store"
	"github.com/rcliao/studylog/internal/suggest"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// maxUploadSize bounds import bodies.
const maxUploadSize = 10 * 1024 * 1024

// Server is the study-log HTTP server.
type Server struct {
	store      *store.Store
	factory    *store.Factory
	suggester  *suggest.Client
	gate       suggest.Gate
	logger     *zap.Logger
	metrics    *Metrics
	templates  *template.Template
	router     chi.Router
	windowDays int
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSuggester enables POST /api/suggest.
func WithSuggester(c *suggest.Client) Option {
	return func(s *Server) { s.suggester = c }
}

// WithWindowDays sets the default chart window.
func WithWindowDays(days int) Option {
	return func(s *Server) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithClock overrides the time source used for the chart and stats.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server over an already loaded store.
func New(st *store.Store, factory *store.Factory, opts ...Option) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"timeAgo": timeAgo,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		store:      st,
		factory:    factory,
		suggester:  suggest.NewClient(nil),
		logger:     zap.NewNop(),
		metrics:    NewMetrics(),
		templates:  tmpl,
		windowDays: store.DefaultWindowDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.metrics.middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Pages.
	r.Get("/", s.handleHome)
	r.Post("/entries", s.handleFormAdd)
	r.Post("/entries/{id}/delete", s.handleFormDelete)
	r.Post("/import", s.handleFormImport)
	r.Get("/export", s.handleExport)

	// API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/entries", s.handleListEntries)
		r.Post("/entries", s.handleCreateEntry)
		r.Delete("/entries/{id}", s.handleDeleteEntry)
		r.Get("/activity", s.handleActivity)
		r.Get("/stats", s.handleStats)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/suggest", s.handleSuggest)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	s.router = r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
