package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightagent/config"
	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps the raw provider payload per route and date so repeated
// searches inside the TTL window do not burn provider quota.
type RedisCache struct {
	client     *redis.Client
	payloadTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, payloadTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		payloadTTL: payloadTTL,
	}
}

// GetPayload returns the cached raw payload for the query, or (nil, nil) on a
// miss.
func (c *RedisCache) GetPayload(ctx context.Context, q domain.SearchQuery) (map[string]any, error) {
	data, err := c.client.Get(ctx, payloadKey(q)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *RedisCache) SetPayload(ctx context.Context, q domain.SearchQuery, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, payloadKey(q), data, c.payloadTTL).Err()
}

func payloadKey(q domain.SearchQuery) string {
	return fmt.Sprintf("cache:payload:%s:%s:%s", q.Origin, q.Destination, q.Date)
}
