package booking

import (
	"context"
	"encoding/json"
	"time"

	"bookly/models"
	"bookly/utils"

	"github.com/go-redis/redis/v8"
)

// StatsCache memoises specialist stats. Version is bumped whenever one of the
// specialist's bookings changes, which retires every key built from the old one.
type StatsCache interface {
	Get(ctx context.Context, key string) (*models.SpecialistStats, bool)
	Set(ctx context.Context, key string, stats *models.SpecialistStats, ttl time.Duration) error
	Version(ctx context.Context, specialistID string) int64
	Bump(ctx context.Context, specialistID string) error
}

// NopStatsCache never caches.
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, string) (*models.SpecialistStats, bool) { return nil, false }
func (NopStatsCache) Set(context.Context, string, *models.SpecialistStats, time.Duration) error {
	return nil
}
func (NopStatsCache) Version(context.Context, string) int64 { return 0 }
func (NopStatsCache) Bump(context.Context, string) error    { return nil }

// RedisStatsCache keeps stats as JSON in Redis.
type RedisStatsCache struct {
	Client *redis.Client
}

func (c RedisStatsCache) Get(ctx context.Context, key string) (*models.SpecialistStats, bool) {
	raw, err := c.Client.Get(ctx, utils.StatsCachePrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var stats models.SpecialistStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c RedisStatsCache) Set(ctx context.Context, key string, stats *models.SpecialistStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, utils.StatsCachePrefix+key, raw, ttl).Err()
}

func (c RedisStatsCache) Version(ctx context.Context, specialistID string) int64 {
	v, err := c.Client.Get(ctx, utils.StatsVersionPrefix+specialistID).Int64()
	if err != nil {
		return 0
	}
	return v
}

func (c RedisStatsCache) Bump(ctx context.Context, specialistID string) error {
	return c.Client.Incr(ctx, utils.StatsVersionPrefix+specialistID).Err()
}
