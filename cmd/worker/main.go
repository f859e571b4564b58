package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ecobazaar/internal/cache"
	"ecobazaar/internal/config"
	"ecobazaar/internal/database"
	"ecobazaar/internal/log"
	"ecobazaar/internal/queue"
	"ecobazaar/internal/repository"
	"ecobazaar/internal/storage"
	"ecobazaar/internal/tasks"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadWorker()
	if err != nil {
		panic(err)
	}

	logger := log.NewWithLevel(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, "ecobazaar-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer dbPool.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("object store init failed")
	}

	processor := tasks.NewProcessor(
		objectStore,
		repository.NewProductRepository(dbPool),
		tasks.Options{
			UploadPrefix:    cfg.Storage.UploadPrefix,
			OrphanRetention: cfg.Storage.OrphanRetention,
		},
		logger,
	)
	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Queues.ClaimInterval,
		logger,
		processor,
	)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("create consumer group failed")
	}

	logger.Info().Str("stream", cfg.Redis.Stream).Str("group", cfg.Redis.Group).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
	}
	logger.Info().Msg("worker exited")
}
