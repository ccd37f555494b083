// Package web provides the JSON HTTP API for arv.
package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/arv/internal/comps"
	"github.com/evcraddock/arv/internal/logging"
	"github.com/evcraddock/arv/internal/report"
)

// Valuer runs valuations for the API.
type Valuer interface {
	Value(ctx context.Context, s comps.Subject) (*comps.Valuation, error)
	Save(v *comps.Valuation) (*report.Report, error)
}

// Server is the HTTP API server.
type Server struct {
	valuer   Valuer
	reports  *report.Repository
	apiToken string
	mux      *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithReports enables the history endpoints.
func WithReports(repo *report.Repository) Option {
	return func(s *Server) { s.reports = repo }
}

// WithAPIToken requires "Authorization: Bearer <token>" on /api/ routes.
func WithAPIToken(token string) Option {
	return func(s *Server) { s.apiToken = token }
}

// NewServer creates an API server backed by valuer.
func NewServer(valuer Valuer, opts ...Option) *Server {
	s := &Server{
		valuer: valuer,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/valuations", s.handleValuations)
	s.mux.HandleFunc("/api/valuations/", s.handleValuationRoute)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler returns the server wrapped in its middleware chain.
func (s *Server) Handler() http.Handler {
	return logging.RequestLogger(s.requireToken(s))
}

// ListenAndServe serves the API on port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

// requireToken enforces the bearer token on /api/ routes when one is configured.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken == "" || !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.apiToken)) != 1 {
			apiError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
