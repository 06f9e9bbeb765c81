package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Friend-Renter/fr-marketing-api/config"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// GetRedisInstance khởi tạo và trả về một *redis.Client đã kết nối.
// Redis giữ counter rate-limit, key idempotency và cache vehicle catalog.
// URL phải là redis:// hoặc rediss:// (Upstash chạy thẳng với rediss://).
func GetRedisInstance(c *config.Configuration) (*redis.Client, error) {
	if c.Redis_URL == "" {
		return nil, fmt.Errorf("redis connection URL is empty")
	}
	if !strings.HasPrefix(strings.ToLower(c.Redis_URL), "redis://") &&
		!strings.HasPrefix(strings.ToLower(c.Redis_URL), "rediss://") {
		return nil, fmt.Errorf("REDIS_URL must start with redis:// or rediss:// (got %q...)", truncate(c.Redis_URL, 16))
	}

	opts, err := redis.ParseURL(c.Redis_URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	opts.MaxRetries = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.GetAppLogger().Info("Successfully connected to Redis")
	return client, nil
}

// CloseRedisInstance đóng kết nối Redis client.
func CloseRedisInstance(client *redis.Client) error {
	if err := client.Close(); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to close Redis client")
		return err
	}
	logger.GetAppLogger().Info("Successfully disconnected from Redis")
	return nil
}

// PingRedis kiểm tra Redis còn sống không (dùng cho health check).
func PingRedis(ctx context.Context, client *redis.Client) bool {
	if client == nil {
		return false
	}
	return client.Ping(ctx).Err() == nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
