package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/box-league/internal/app"
	"github.com/riskibarqy/box-league/internal/config"
	"github.com/riskibarqy/box-league/internal/observability"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Start(ctx, cfg, logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}))
	if err != nil {
		panic(err)
	}
	logger := telemetry.Logger.With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	exitCode := serve(ctx, cfg, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown", "error", err)
	}
	os.Exit(exitCode)
}

func serve(ctx context.Context, cfg config.Config, logger *logging.Logger) int {
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close storage", "error", err)
		}
	}()

	srv := application.Server
	failed := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		logger.Error("http server failed", "error", err)
		return 1
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("http server stopped")
	return 0
}
