package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/menezmethod/mwpriority/internal/auth"
	"github.com/menezmethod/mwpriority/internal/config"
	"github.com/menezmethod/mwpriority/internal/logging"
	"github.com/menezmethod/mwpriority/internal/observability"
	"github.com/menezmethod/mwpriority/internal/server"
	"github.com/menezmethod/mwpriority/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env vars work without it)")
	flag.Parse()

	// Load configuration: defaults -> YAML file -> env vars.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cfg.Log.CloudFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load API keys.
	ks, err := auth.NewKeyStore(cfg.Auth.KeysFile)
	if err != nil {
		logger.Error("failed to load API keys", "err", err)
		os.Exit(1)
	}
	logger.Info("api keys loaded", "count", ks.Count())
	if cfg.Auth.Watch {
		if err := ks.Watch(ctx, logger); err != nil {
			logger.Warn("api keys watch disabled", "err", err)
		} else {
			logger.Info("watching api keys file", "path", cfg.Auth.KeysFile)
		}
	}

	// Seed the priority list and apply configured edits.
	mgr, err := server.NewPriority(cfg.Priority, logger)
	if err != nil {
		logger.Error("failed to build priority list", "err", err)
		os.Exit(1)
	}
	logger.Info("priority list ready",
		"order", strings.Join(mgr.Priority(), ","),
		"edits", len(cfg.Priority.Edits),
	)

	srv, err := server.New(cfg, mgr, ks, logger)
	if err != nil {
		logger.Error("failed to build server", "err", err)
		os.Exit(1)
	}

	// Optional OpenTelemetry tracing: wrap handler so all requests are traced.
	var tp *observability.TracerProvider
	if cfg.Observability.OTelEnabled {
		tp, err = observability.NewTracerProvider(ctx, cfg.Observability.OTelEndpoint, cfg.Observability.OTelServiceName)
		if err != nil {
			logger.Error("otel tracer provider failed", "err", err)
			os.Exit(1)
		}
		srv.Handler = observability.HTTPHandler(srv.Handler, cfg.Observability.OTelServiceName)
		logger.Info("opentelemetry tracing enabled", "endpoint", cfg.Observability.OTelEndpoint)
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr(), "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if tp != nil {
		_ = tp.Shutdown(shutdownCtx)
	}
	server.Shutdown(shutdownCtx, srv, logger)
	logger.Info("server stopped")
}
