package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

const redisKeyPrefix = "staffing:allocation:"

// RedisCache shares proposals between engine instances. Redis expiry enforces the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("allocation-cache-redis"),
	}
}

// Get implements AllocationCache.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.AllocationProposal, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get allocation: %w", err)
	}

	var proposal models.AllocationProposal
	if err := json.Unmarshal(data, &proposal); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		c.logger.Warn("Discarding undecodable cached proposal", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return &proposal, true, nil
}

// Set implements AllocationCache.
func (c *RedisCache) Set(ctx context.Context, key string, proposal *models.AllocationProposal) error {
	data, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("encode allocation: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set allocation: %w", err)
	}
	return nil
}
