package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/air-quality-dashboard/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/air-quality-dashboard/internal/adapter/http"
	"github.com/couchcryptid/air-quality-dashboard/internal/config"
	"github.com/couchcryptid/air-quality-dashboard/internal/observability"
	"github.com/couchcryptid/air-quality-dashboard/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := csvfile.NewReader(logger)
	loader := csvfile.NewCachedLoader(reader, metrics)

	p := pipeline.New(loader, cfg.DataPath, pipeline.Options{
		PreviewRows:       cfg.PreviewRows,
		DailyField:        cfg.DailyField,
		CorrelationFields: cfg.CorrelationFields,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the data file up front. A failure leaves /readyz at 503 and is
	// retried on the next request.
	go func() {
		if err := p.Warm(ctx); err != nil {
			logger.Error("initial dataset load failed", "path", cfg.DataPath, "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
