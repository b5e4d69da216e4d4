package container

import (
	"context"
	"fmt"

	"vtube-api/internal/config"
	"vtube-api/internal/repository"
	"vtube-api/internal/service"
	"vtube-api/internal/storage"
	"vtube-api/pkg/database"
	"vtube-api/pkg/logger"
	"vtube-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Gateway     *storage.Gateway

	Subscriptions service.SubscriptionService
	Videos        service.VideoService
	Cleanup       *service.CleanupService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	gateway := storage.New(storage.Config{
		BaseURL:   cfg.StorageBaseURL,
		CloudName: cfg.StorageCloudName,
		APIKey:    cfg.StorageAPIKey,
		APISecret: cfg.StorageAPISecret,
	}, log)

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	cleanup := service.NewCleanupService(redisClient, gateway, log)

	return &Container{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		RedisClient:   redisClient,
		Gateway:       gateway,
		Subscriptions: service.NewSubscriptionService(subscriptionRepo, userRepo, log),
		Videos:        service.NewVideoService(videoRepo, gateway, cleanup, log),
		Cleanup:       cleanup,
	}, nil
}
