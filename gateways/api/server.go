package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	config "github.com/Princerai504/meetingbot/config/api"
	"github.com/Princerai504/meetingbot/gateways/api/handler"
	"github.com/Princerai504/meetingbot/gateways/api/ws"
	"github.com/Princerai504/meetingbot/services/meeting/ingest"
	"github.com/Princerai504/meetingbot/services/meeting/storage"
	"github.com/Princerai504/meetingbot/services/meeting/summarizer"
	"github.com/Princerai504/meetingbot/services/meeting/usecase"
)

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	handler *handler.Handler
	feed    *ws.Feed
	watcher *ingest.Watcher
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	log.Info("creating api server")
	log.Debug("server config",
		slog.Int("port", cfg.Port),
		slog.Bool("database_configured", cfg.DatabaseURL != ""),
		slog.Bool("gemini_api_key_set", cfg.GeminiAPIKey != ""),
		slog.String("upload_dir", cfg.UploadDir),
		slog.String("ingest_dir", cfg.Ingest.Dir))

	var st storage.Storage
	if cfg.DatabaseURL != "" {
		log.Debug("connecting to postgres")
		pg, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		st = pg
		log.Info("postgres storage ready")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		st = storage.New()
	}

	sm := summarizer.New(cfg.GeminiAPIKey, log)
	uc := usecase.New(st, sm, cfg.UploadDir, log)
	h := handler.New(uc, log)
	feed := ws.NewFeed(st, log)

	var watcher *ingest.Watcher
	if cfg.Ingest.Enabled {
		if err := os.MkdirAll(cfg.Ingest.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create recordings dir: %w", err)
		}
		var err error
		watcher, err = ingest.New(cfg.Ingest.Dir, uc, cfg.Ingest.MaxConcurrent, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create ingest watcher: %w", err)
		}
		log.Info("ingest watcher created", slog.String("dir", cfg.Ingest.Dir))
	}

	log.Info("api server instance created successfully")
	return &Server{
		cfg:     cfg,
		log:     log,
		handler: h,
		feed:    feed,
		watcher: watcher,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting api server")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.handler.RegisterRoutes(router)
	s.feed.RegisterRoutes(router)
	s.log.Info("routes registered successfully")

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.log.Debug("HTTP server configured",
		slog.String("addr", addr),
		slog.Duration("read_timeout", 15*time.Second),
		slog.Duration("write_timeout", 15*time.Second))

	watcherCtx, cancelWatcher := context.WithCancel(ctx)
	defer cancelWatcher()
	if s.watcher != nil {
		go func() {
			if err := s.watcher.Start(watcherCtx); err != nil && watcherCtx.Err() == nil {
				s.log.Error("ingest watcher exited", slog.String("error", err.Error()))
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("api gateway started", slog.String("address", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	stop := func(reason string) error {
		s.log.Info("start shutdown", slog.String("reason", reason))

		cancelWatcher()
		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.log.Warn("failed to stop ingest watcher", slog.String("error", err.Error()))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("graceful shutdown failed", slog.String("error", err.Error()))
			srv.Close()
			return fmt.Errorf("failed to gracefully shutdown server: %w", err)
		}
		s.log.Info("server shutdown completed successfully")
		return nil
	}

	select {
	case err := <-serverErrors:
		s.log.Error("server error received", slog.String("error", err.Error()))
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		return stop(sig.String())
	case <-ctx.Done():
		return stop("context canceled")
	}
}
