// Package server runs a service's HTTP listener with health and metrics
// endpoints mounted next to its own routes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const shutdownGrace = 10 * time.Second

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// NewRouter serves /healthz and /metrics and mounts app at the root when set.
func NewRouter(metrics http.Handler, checks map[string]Check, app http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", health(checks))
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	if app != nil {
		r.Mount("/", app)
	}
	return r
}

func health(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": http.StatusText(status), "checks": result})
	}
}

type Option func(*http.Server)

// WithWriteTimeout bounds how long a handler may take before its response is cut.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d
		}
	}
}

func New(addr string, h http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Run serves until ctx ends, then drains in-flight requests.
func Run(ctx context.Context, log *slog.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("http server stopped", "addr", srv.Addr)
	return nil
}
