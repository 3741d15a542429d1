// Package cache holds the optional read-through share price cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

const keyPrefix = "ledger:share-price:"

// PriceCache stores share prices by period.
type PriceCache interface {
	// Get returns the cached price of p; ok is false on a miss.
	Get(ctx context.Context, p period.Period) (price float64, ok bool, err error)
	Set(ctx context.Context, p period.Period, price float64) error
	Invalidate(ctx context.Context, p period.Period) error
}

// Noop is a PriceCache that never holds anything. It is used when Redis is
// not configured.
type Noop struct{}

func (Noop) Get(context.Context, period.Period) (float64, bool, error) { return 0, false, nil }
func (Noop) Set(context.Context, period.Period, float64) error         { return nil }
func (Noop) Invalidate(context.Context, period.Period) error           { return nil }

// Redis is a PriceCache backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}

	return &Redis{client: client, ttl: ttl}, nil
}

func key(p period.Period) string {
	return keyPrefix + p.String()
}

// Get implements PriceCache.
func (c *Redis) Get(ctx context.Context, p period.Period) (float64, bool, error) {
	price, err := c.client.Get(ctx, key(p)).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache: get %s: %w", p, err)
	}
	return price, true, nil
}

// Set implements PriceCache.
func (c *Redis) Set(ctx context.Context, p period.Period, price float64) error {
	if err := c.client.Set(ctx, key(p), price, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", p, err)
	}
	return nil
}

// Invalidate implements PriceCache.
func (c *Redis) Invalidate(ctx context.Context, p period.Period) error {
	if err := c.client.Del(ctx, key(p)).Err(); err != nil {
		return fmt.Errorf("cache: delete %s: %w", p, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}
