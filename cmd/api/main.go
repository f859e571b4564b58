package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ecobazaar/internal/cache"
	"ecobazaar/internal/config"
	"ecobazaar/internal/database"
	"ecobazaar/internal/handlers"
	"ecobazaar/internal/jobs"
	"ecobazaar/internal/log"
	"ecobazaar/internal/mailer"
	"ecobazaar/internal/queue"
	"ecobazaar/internal/repository"
	"ecobazaar/internal/security"
	"ecobazaar/internal/server"
	"ecobazaar/internal/service"
	"ecobazaar/internal/storage"
	"ecobazaar/internal/validation"
)

func main() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, "ecobazaar-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.Migrate(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	redisClient, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	sender, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init mailer")
	}

	producer := queue.NewProducer(redisClient, cfg.Redis.Stream)
	validate := validation.New()

	users := repository.NewUserRepository(dbPool)
	tokens := service.NewTokenIssuer(users, cfg.Security.ResetTokenTTL, time.Now)
	services := handlers.Services{
		Auth: service.NewAuthService(
			users,
			security.NewPasswordHasher(security.DefaultArgon2Params),
			tokens,
			sender,
			validate,
			cfg.Security,
			logger,
		),
		Products: service.NewProductService(repository.NewProductRepository(dbPool), validate, logger),
		Orders:   service.NewOrderService(repository.NewOrderRepository(dbPool), validate, logger),
		Uploads:  service.NewUploadService(objectStore, producer, cfg.Storage.UploadPrefix, cfg.HTTP.MaxUploadBytes, logger),
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, services, objectStore, dbPool, cache.Pinger{Client: redisClient})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(producer, cfg.Jobs.CleanupSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := httpServer.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}

	shutdown(logger, scheduler, dbPool, redisClient)
}

func shutdown(logger zerolog.Logger, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
