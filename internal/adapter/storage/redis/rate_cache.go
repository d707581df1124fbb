package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stablecoin-exchange/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const rateCacheKey = "rate:current"

// RateCache caches the latest oracle quote so a burst of trades does not
// hammer the rate collaborator. A missing or expired entry reads as nil.
type RateCache struct {
	client *goredis.Client
}

// NewRateCache creates a new Redis-backed rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{client: client}
}

// Get returns the cached quote, or nil if absent.
func (c *RateCache) Get(ctx context.Context) (*ports.RateQuote, error) {
	val, err := c.client.Get(ctx, rateCacheKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rate cache get: %w", err)
	}

	var quote ports.RateQuote
	if err := json.Unmarshal(val, &quote); err != nil {
		return nil, fmt.Errorf("redis rate cache decode: %w", err)
	}
	return &quote, nil
}

// Set stores the quote with a TTL.
func (c *RateCache) Set(ctx context.Context, quote *ports.RateQuote, ttl time.Duration) error {
	val, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("redis rate cache encode: %w", err)
	}
	if err := c.client.Set(ctx, rateCacheKey, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis rate cache set: %w", err)
	}
	return nil
}
