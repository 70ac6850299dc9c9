// Package cache holds the short-TTL cache for registry-derived domain facts.
// Registry answers are authoritative; the cache only spares the shared
// session from repeated availability lookups, and is invalidated whenever a
// transition changes what the registry would say.
package cache

import (
	"context"

	"registrar/internal/platform/config"
	"registrar/internal/platform/redis"
)

// Cache is the consumer-side port. A nil *Redis behaves as an always-miss
// cache, so callers never branch on configuration.
type Cache interface {
	GetAvailability(ctx context.Context, name string) (available, ok bool)
	SetAvailability(ctx context.Context, name string, available bool)
	Invalidate(ctx context.Context, name string)
}

// Redis caches domain facts in Redis with the configured retention TTL.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func availabilityKey(name string) string {
	return "domain:available:" + name
}

func (c *Redis) GetAvailability(ctx context.Context, name string) (bool, bool) {
	if c == nil || c.client == nil {
		return false, false
	}
	val, err := c.client.Get(ctx, availabilityKey(name)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

func (c *Redis) SetAvailability(ctx context.Context, name string, available bool) {
	if c == nil || c.client == nil {
		return
	}
	val := "0"
	if available {
		val = "1"
	}
	// Cache failures are invisible to callers; the registry remains the
	// source of truth.
	_ = c.client.Set(ctx, availabilityKey(name), val, config.DomainInfoCacheTTL).Err()
}

func (c *Redis) Invalidate(ctx context.Context, name string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, availabilityKey(name)).Err()
}
