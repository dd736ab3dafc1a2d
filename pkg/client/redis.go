package client

import (
	"context"
	"strings"
	"time"

	"petsitter/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a verified client, or nil when Redis is disabled or unreachable.
func ConnectRedis(ctx context.Context, log *logger.Logger, addr, password string) *redis.Client {
	if strings.TrimSpace(addr) == "" {
		log.Info("Redis not configured, running without cache")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis not available, running without cache", "error", err)
		_ = client.Close()
		return nil
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	return client
}
