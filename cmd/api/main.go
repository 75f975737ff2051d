// Package main is the entrypoint for the Lyftr webhook API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/lyftr/lyftr/internal/config"
	"github.com/lyftr/lyftr/internal/handler"
	"github.com/lyftr/lyftr/internal/metrics"
	"github.com/lyftr/lyftr/internal/repository"
	"github.com/lyftr/lyftr/internal/server"
)

func main() {
	ctx := context.Background()

	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if !cfg.HasWebhookSecret() {
		// The process still starts; readiness stays 503 until the
		// secret is configured and the pod restarts.
		logger.Error("WEBHOOK_SECRET environment variable is not set")
	}

	repo, err := repository.Open(ctx, cfg.DBPath())
	if err != nil {
		logger.Error("failed to open database",
			slog.String("error", err.Error()),
			slog.String("db_path", cfg.DBPath()),
		)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialized", "db_path", cfg.DBPath())

	collector := metrics.New()

	webhookHandler := handler.NewWebhookHandler(repo, collector, logger, cfg.WebhookSecret)
	messageHandler := handler.NewMessageHandler(repo, logger)
	healthHandler := handler.NewHealthHandler(repo, cfg.HasWebhookSecret())
	metricsHandler := handler.NewMetricsHandler(collector)

	r := handler.NewRouter(
		webhookHandler,
		messageHandler,
		healthHandler,
		metricsHandler,
		collector,
		logger,
		cfg.MaxRequestBodySize,
	)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
