// Package server configures and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/menezmethod/mwpriority/internal/auth"
	"github.com/menezmethod/mwpriority/internal/config"
	"github.com/menezmethod/mwpriority/internal/handler"
	"github.com/menezmethod/mwpriority/internal/middleware"
	"github.com/menezmethod/mwpriority/priority"
)

// NewPriority seeds a manager from cfg.Defaults and applies cfg.Edits in
// order. The first failing edit aborts startup; edits before it stay applied.
func NewPriority(cfg config.Priority, logger *slog.Logger) (*priority.Manager, error) {
	mgr := priority.WithDefaults(priority.NewSliceOwner(), cfg.Defaults)

	for i, e := range cfg.Edits {
		err := mgr.Do(e)
		middleware.PriorityEdits.WithLabelValues(e.Op, editResult(err)).Inc()
		if err != nil {
			return mgr, fmt.Errorf("priority.edits[%d] (%s): %w", i, e.Op, err)
		}
		logger.Debug("priority edit applied", "op", e.Op, "target", e.Target, "items", e.Items)
	}
	return mgr, nil
}

func editResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, priority.ErrNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}

// New creates a configured *http.Server with all routes and middleware wired.
// The middleware named in cfg.Middleware.Stack protect the /v1 routes and run
// in the order given by mgr's priority list.
func New(cfg config.Config, mgr *priority.Manager, ks *auth.KeyStore, logger *slog.Logger) (*http.Server, error) {
	stack, err := buildStack(cfg, ks, logger)
	if err != nil {
		return nil, err
	}

	order := mgr.Priority()
	protected := func(h http.Handler) http.Handler {
		return stack.Handler(h, order)
	}

	mux := http.NewServeMux()

	// Health, docs and metrics: no auth required.
	mux.HandleFunc("GET /health", handler.Health())
	mux.HandleFunc("GET /health/ready", handler.Ready(stack.Names(), mgr))
	mux.HandleFunc("GET /version", handler.VersionInfo())
	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI())
	mux.Handle("GET /metrics", promhttp.Handler())

	// Priority API behind the configured stack.
	mux.Handle("GET /v1/priority", protected(handler.Priority(mgr)))
	mux.Handle("GET /v1/priority/{name}", protected(handler.PriorityIndex(mgr, logger)))
	mux.Handle("GET /v1/trace", protected(handler.Trace()))

	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}, nil
}

// buildStack registers the configured middleware in stack order.
func buildStack(cfg config.Config, ks *auth.KeyStore, logger *slog.Logger) (*middleware.Stack, error) {
	rl := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	available := map[string]func() middleware.Middleware{
		middleware.NameRequestID: middleware.RequestID,
		middleware.NameRecover:   func() middleware.Middleware { return middleware.Recover(logger) },
		middleware.NameMetrics:   middleware.Metrics,
		middleware.NameLogging:   func() middleware.Middleware { return middleware.Logging(logger) },
		middleware.NameAuth:      func() middleware.Middleware { return middleware.Auth(ks) },
		middleware.NameRateLimit: func() middleware.Middleware { return middleware.RateLimit(rl) },
	}

	stack := &middleware.Stack{}
	for _, name := range cfg.Middleware.Stack {
		build, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("middleware.stack: unknown middleware %q", name)
		}
		stack.Use(name, build())
	}
	return stack, nil
}

// Shutdown gracefully shuts down the server with the given context.
func Shutdown(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	logger.Info("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}
