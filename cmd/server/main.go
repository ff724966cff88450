package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/salesprep/internal/config"
	"github.com/JonMunkholm/salesprep/internal/core"
	"github.com/JonMunkholm/salesprep/internal/logging"
	"github.com/JonMunkholm/salesprep/internal/metrics"
	"github.com/JonMunkholm/salesprep/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"env", cfg.Env.Name,
		"port", cfg.Server.Port,
		"max_body_size", cfg.Transform.MaxBodySize,
		"max_concurrent", cfg.Transform.MaxConcurrent,
		"metrics_enabled", cfg.Metrics.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	limiter := core.NewBatchLimiter(cfg.Transform.MaxConcurrent, cfg.Transform.MaxWaitTime)

	var reg *metrics.Registry
	var observer core.BatchObserver
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry(limiter)
		observer = reg
	}

	logger := slog.Default()
	transformer := core.NewDefaultTransformer(core.WithLogger(logger))
	processor := core.NewStreamProcessor(transformer, observer).WithLogger(logger)

	server := web.NewServer(cfg, processor, limiter, reg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight batches to finish (with timeout)
		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for batches to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("batches did not complete in time", "error", err)
			} else {
				slog.Info("all batches completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
