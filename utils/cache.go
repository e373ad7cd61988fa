package utils

import (
	"context"
	"fmt"
	"time"

	"bookly/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient backs the catalog and stats caches. It is nil when Redis was
// unreachable at startup.
var CacheClient *redis.Client

// NewCacheClient connects to the cache database of cfg and pings it.
func NewCacheClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis cache at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// GetCacheClient returns the shared cache client, connecting on first use.
// Callers treat nil as "no cache" and read through to the store.
func GetCacheClient() *redis.Client {
	if CacheClient != nil {
		return CacheClient
	}
	client, err := NewCacheClient(context.Background(), config.AppConfig)
	if err != nil {
		GetLogger().Sugar().Warnw("cache disabled", "error", err)
		return nil
	}
	CacheClient = client
	return CacheClient
}
