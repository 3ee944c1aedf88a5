package cache

import (
	"context"
	"time"

	"notes-service/config"

	"github.com/go-redis/redis/v8"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeCache builds the response cache. Type "none" disables it and a nil
// cache is returned; handlers treat that as a permanent miss.
func InitializeCache(cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Type == "" || cfg.Type == "none" {
		logger.Info("Response cache disabled")
		return nil, nil
	}

	c, err := cache.New(cache.Config{
		Type:          cfg.Type,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("Failed to initialize cache", zap.Error(err))
		return nil, err
	}

	logger.Info("Cache initialized", zap.String("type", cfg.Type))
	return c, nil
}

// NewRedisClient connects to the Redis used for sessions and rate limiting,
// failing fast when it is unreachable.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		logger.Error("Failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return nil, err
	}
	return client, nil
}
