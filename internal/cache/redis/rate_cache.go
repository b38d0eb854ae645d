package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// RateCache implements domain.RateCache using plain Redis strings. Each pair
// is stored at key "rate:{FROM}:{TO}" with a TTL, so a stale rate expires on
// its own rather than needing an invalidation path.
type RateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRateCache creates a RateCache backed by the given Client. A zero ttl
// stores rates without expiry.
func NewRateCache(c *Client, ttl time.Duration) *RateCache {
	return &RateCache{rdb: c.Underlying(), ttl: ttl}
}

func rateKey(from, to string) string {
	return "rate:" + strings.ToUpper(from) + ":" + strings.ToUpper(to)
}

// GetRate retrieves a cached rate. It returns domain.ErrNotFound when the
// pair is absent or expired.
func (rc *RateCache) GetRate(ctx context.Context, from, to string) (float64, error) {
	val, err := rc.rdb.Get(ctx, rateKey(from, to)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis: get rate %s/%s: %w", from, to, err)
	}
	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: parse rate %s/%s: %w", from, to, err)
	}
	return rate, nil
}

// SetRate stores a rate under the cache TTL.
func (rc *RateCache) SetRate(ctx context.Context, from, to string, rate float64) error {
	val := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := rc.rdb.Set(ctx, rateKey(from, to), val, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set rate %s/%s: %w", from, to, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.RateCache = (*RateCache)(nil)
