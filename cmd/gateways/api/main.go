package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	config "github.com/Princerai504/meetingbot/config/api"
	"github.com/Princerai504/meetingbot/gateways/api"
	"github.com/Princerai504/meetingbot/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:      slog.LevelDebug,
		Output:     os.Stderr,
		AddSource:  true,
		JSONFormat: false,
	})
	log.Info("initializing api gateway")

	cfg := config.MustLoad()
	log.Info("configuration loaded successfully",
		slog.Int("port", cfg.Port),
		slog.Bool("database_configured", cfg.DatabaseURL != ""),
		slog.Bool("gemini_api_key_set", cfg.GeminiAPIKey != ""))

	ctx := logger.WithContext(context.Background(), log)
	rootCtx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("application terminated with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("application terminated successfully")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	srv, err := api.New(ctx, cfg, log)
	if err != nil {
		log.Error("server initialization failed", slog.String("error", err.Error()))
		return err
	}

	return srv.Start(ctx)
}
