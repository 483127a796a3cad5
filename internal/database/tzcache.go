package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TimezoneSource answers timezone lookups; *DB implements it.
type TimezoneSource interface {
	UserTimezone(ctx context.Context, owner int64) (string, error)
}

// TimezoneCache fronts timezone lookups with redis. The matcher asks for
// the owner's timezone on every tick for every reminder, so the lookup is
// the hottest read path in the system. With no redis client it degrades to
// a passthrough.
type TimezoneCache struct {
	source TimezoneSource
	rdb    *redis.Client
	ttl    time.Duration
}

func NewTimezoneCache(source TimezoneSource, rdb *redis.Client, ttl time.Duration) *TimezoneCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TimezoneCache{source: source, rdb: rdb, ttl: ttl}
}

func (c *TimezoneCache) key(owner int64) string {
	return fmt.Sprintf("tz:%d", owner)
}

// UserTimezone returns the cached timezone, falling back to the source.
// Cache errors are ignored: redis being down must never break matching.
func (c *TimezoneCache) UserTimezone(ctx context.Context, owner int64) (string, error) {
	if c.rdb != nil {
		tz, err := c.rdb.Get(ctx, c.key(owner)).Result()
		if err == nil && tz != "" {
			return tz, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			// fall through to the source
		}
	}

	tz, err := c.source.UserTimezone(ctx, owner)
	if err != nil {
		return "", err
	}

	if c.rdb != nil {
		_ = c.rdb.Set(ctx, c.key(owner), tz, c.ttl).Err()
	}
	return tz, nil
}

// Invalidate drops the cached timezone after the owner changes it.
func (c *TimezoneCache) Invalidate(ctx context.Context, owner int64) {
	if c.rdb != nil {
		_ = c.rdb.Del(ctx, c.key(owner)).Err()
	}
}
