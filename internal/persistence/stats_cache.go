package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const statsCacheKey = "helpdesk:ticket_stats"

// StatsCache keeps the aggregate ticket counts in Redis so dashboard polling
// does not hit Postgres on every request. Cache misses and Redis failures
// fall through to the database.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache builds the cache. A zero TTL disables expiry-based reuse.
func NewStatsCache(r *Redis, ttl time.Duration, logger *zap.Logger) *StatsCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &StatsCache{client: client, ttl: ttl, logger: logger}
}

// Get returns cached stats, or nil on miss or error.
func (c *StatsCache) Get(ctx context.Context) *domain.TicketStats {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("stats cache read failed", zap.Error(err))
		}
		return nil
	}
	var stats domain.TicketStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn("stats cache entry corrupt", zap.Error(err))
		return nil
	}
	return &stats
}

// Set stores stats with the configured TTL. Errors are logged only.
func (c *StatsCache) Set(ctx context.Context, stats *domain.TicketStats) {
	if c == nil || c.client == nil || stats == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("stats cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached entry after a ticket mutation.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, statsCacheKey).Err(); err != nil {
		c.logger.Debug("stats cache invalidation failed", zap.Error(err))
	}
}
