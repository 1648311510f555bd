package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/sla-analytics/internal/persistence"
)

const latestReportKey = "sla:report:latest"

// ReportCache keeps the most recent report snapshot in redis so clients can
// fetch it without replaying the run. It tolerates a missing redis instance;
// every operation degrades to a miss.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache instantiates the cache on top of the shared redis handle.
func NewReportCache(rd *persistence.Redis, ttl time.Duration) *ReportCache {
	cache := &ReportCache{ttl: ttl}
	if rd != nil {
		cache.client = rd.Client
	}
	return cache
}

// StoreLatest replaces the cached snapshot.
func (c *ReportCache) StoreLatest(ctx context.Context, payload []byte) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, latestReportKey, payload, c.ttl).Err()
}

// Latest returns the cached snapshot, or nil when none is cached.
func (c *ReportCache) Latest(ctx context.Context) ([]byte, error) {
	if c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, latestReportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
