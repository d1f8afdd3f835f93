package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/linguagateway/internal/api"
	"github.com/nikhilbhutani/linguagateway/internal/api/handlers"
	"github.com/nikhilbhutani/linguagateway/internal/audit"
	"github.com/nikhilbhutani/linguagateway/internal/cache"
	"github.com/nikhilbhutani/linguagateway/internal/config"
	"github.com/nikhilbhutani/linguagateway/internal/database"
	"github.com/nikhilbhutani/linguagateway/internal/document"
	"github.com/nikhilbhutani/linguagateway/internal/factory"
	"github.com/nikhilbhutani/linguagateway/internal/jobs"
	"github.com/nikhilbhutani/linguagateway/internal/queue"
	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()
	checks := map[string]handlers.Pinger{}

	// Database connection (optional, enables the audit log)
	var auditSvc *audit.Service
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without audit log", "error", err)
	} else {
		defer db.Close()
		checks["postgres"] = db

		if err := database.RunMigrations(ctx, db, database.MigrationFS(cfg.Database.MigrationsPath)); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
		auditSvc = audit.NewService(db)
	}

	// Redis connection (optional)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	redisUp := rdb.Ping(ctx).Err() == nil
	if !redisUp {
		slog.Warn("redis unavailable, running without result cache or async jobs", "addr", cfg.Redis.Addr)
	}

	var opts []factory.Option
	if redisUp {
		checks["redis"] = cache.NewCache(rdb, "")
		if cfg.Cache.ResultTTL > 0 {
			opts = append(opts, factory.WithResultCache(cache.NewCache(rdb, "translation:"), cfg.Cache.ResultTTL))
		}
	}
	if auditSvc != nil {
		opts = append(opts, factory.WithWrapper(func(h translation.Handler) translation.Handler {
			return audit.NewHandler(h, auditSvc)
		}))
	}

	translator, err := factory.NewTranslator(cfg.Deployment, opts...)
	if err != nil {
		slog.Error("failed to create translation handler", "error", err)
		os.Exit(1)
	}
	transcriber := factory.NewTranscriber(cfg.Deployment)

	ocr := document.NewOCRService(cfg.OCR.TesseractPath)
	if !ocr.IsAvailable() {
		slog.Info("tesseract not found, image documents disabled", "path", cfg.OCR.TesseractPath)
		ocr = nil
	}

	deps := api.Deps{
		Config:      cfg,
		Translator:  translator,
		Transcriber: transcriber,
		Documents:   document.NewService(translator.Handler, ocr),
		Audit:       auditSvc,
		Checks:      checks,
	}

	if redisUp {
		queueClient := queue.NewClient(cfg.Redis)
		defer queueClient.Close()
		deps.Queue = queueClient
		deps.Jobs = jobs.NewStore(cache.NewCache(rdb, "job:"), jobs.DefaultTTL)
	}

	// Setup router
	router := api.NewRouter(deps)
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"deployment_mode", cfg.Deployment.Mode,
			"translation_provider", cfg.Deployment.Translation.Provider,
			"speech_backend", transcriber.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
