// internal/engine/statuscache/redis.go
package statuscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"license-alert-engine/internal/models"
)

const redisKeyPrefix = "alert:status:"

// RedisCache stores delivery statuses in Redis with a TTL; used by hosts that
// want status queries to survive a restart or run next to a read replica of
// the engine's process.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Put(ctx context.Context, st models.DeliveryStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+st.MessageID, data, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, messageID string) (*models.DeliveryStatus, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+messageID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st models.DeliveryStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
