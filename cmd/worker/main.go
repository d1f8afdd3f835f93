package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/linguagateway/internal/cache"
	"github.com/nikhilbhutani/linguagateway/internal/config"
	"github.com/nikhilbhutani/linguagateway/internal/factory"
	"github.com/nikhilbhutani/linguagateway/internal/jobs"
	"github.com/nikhilbhutani/linguagateway/internal/queue"
	"github.com/nikhilbhutani/linguagateway/internal/queue/workers"
	"github.com/nikhilbhutani/linguagateway/internal/speech"
	"github.com/nikhilbhutani/linguagateway/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var opts []factory.Option
	if cfg.Cache.ResultTTL > 0 {
		opts = append(opts, factory.WithResultCache(cache.NewCache(rdb, "translation:"), cfg.Cache.ResultTTL))
	}
	translator, err := factory.NewTranslator(cfg.Deployment, opts...)
	if err != nil {
		slog.Error("failed to create translation handler", "error", err)
		os.Exit(1)
	}
	meetings := speech.NewMeetingTranscriber(factory.NewTranscriber(cfg.Deployment))
	jobStore := jobs.NewStore(cache.NewCache(rdb, "job:"), jobs.DefaultTTL)
	notify := workers.WithNotifier(webhook.NewDispatcher(cfg.Webhook.Secret))

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	registry.Register(queue.TypeTranslationBatch, workers.NewTranslationWorker(translator.Handler, jobStore, notify))
	registry.Register(queue.TypeSpeechMeeting, workers.NewMeetingWorker(meetings, jobStore, notify))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "deployment_mode", cfg.Deployment.Mode)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
