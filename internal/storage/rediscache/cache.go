// Package rediscache provides a Redis-backed cache for market quotes. It
// fronts the market fetcher so repeated lookups within the TTL do not hit
// the upstream provider.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/HLKC779/financial-agents/internal/domain/market"
)

// ErrMiss is returned when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores market quotes in Redis with a fixed TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, prefix: "quote:"}, nil
}

// GetQuote returns the cached quote for symbol, or ErrMiss.
func (c *Cache) GetQuote(ctx context.Context, symbol string) (market.Quote, error) {
	raw, err := c.client.Get(ctx, c.prefix+symbol).Bytes()
	if errors.Is(err, redis.Nil) {
		return market.Quote{}, ErrMiss
	}
	if err != nil {
		return market.Quote{}, fmt.Errorf("redis get: %w", err)
	}
	var q market.Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return market.Quote{}, fmt.Errorf("decode cached quote: %w", err)
	}
	return q, nil
}

// SetQuote stores the quote under its symbol with the cache TTL.
func (c *Cache) SetQuote(ctx context.Context, q market.Quote) error {
	raw, err := json.Marshal(q)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+q.Symbol, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifies the backend connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
