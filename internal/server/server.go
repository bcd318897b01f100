// Package server serves the SalesDesk chat over HTTP: an HTML page backed by a
// session cookie and a small JSON API, both driving the same conversation pipeline.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesdesk/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	// SessionCookie carries the browser's session ID.
	SessionCookie = "salesdesk_session"

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr           string
	SessionTTL     time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the web chat surface.
type Server struct {
	opts     Options
	sessions *SessionManager
	page     *template.Template
	router   chi.Router
	log      *log.Logger
}

// New builds a Server whose sessions are created by factory.
func New(factory ConversationFactory, opts Options) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/chat.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat template: %w", err)
	}

	s := &Server{
		opts:     opts,
		sessions: NewSessionManager(factory, opts.SessionTTL),
		page:     page,
		log:      logger.NewStyledLogger("Server"),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	limited := rateLimit(s.opts.RateLimitRPS, s.opts.RateLimitBurst)

	r.With(limited).Post("/chat", s.handleChatForm)

	r.Route("/api", func(r chi.Router) {
		r.Use(limited)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}/messages", s.handleListMessages)
		r.Post("/sessions/{id}/messages", s.handlePostMessage)
	})

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions exposes the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Run listens on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	s.sessions.StartJanitor(janitorCtx, janitorInterval(s.opts.SessionTTL))

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// janitorInterval sweeps a few times per TTL, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	return interval
}
