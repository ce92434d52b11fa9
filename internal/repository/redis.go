package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ddouble/money-exchange/internal/model"
	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "rates:"

// RedisRateCache implements RateCache using Redis
type RedisRateCache struct {
	client *redis.Client
}

// NewRedisRateCache creates a new Redis-backed rate cache
func NewRedisRateCache(client *redis.Client) *RedisRateCache {
	return &RedisRateCache{
		client: client,
	}
}

// rateKey generates the Redis key for a base currency's rate table
func rateKey(base string) string {
	return rateKeyPrefix + strings.ToUpper(base)
}

// SaveRates stores a rate table with TTL
func (r *RedisRateCache) SaveRates(ctx context.Context, base string, table model.RateTable, ttl time.Duration) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal rate table: %w", err)
	}

	if err := r.client.Set(ctx, rateKey(base), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save rate table: %w", err)
	}

	return nil
}

// GetRates retrieves a cached rate table for a base currency
func (r *RedisRateCache) GetRates(ctx context.Context, base string) (model.RateTable, error) {
	data, err := r.client.Get(ctx, rateKey(base)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get rate table: %w", err)
	}

	var table model.RateTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate table: %w", err)
	}

	return table, nil
}

// Health checks if Redis is healthy
func (r *RedisRateCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
