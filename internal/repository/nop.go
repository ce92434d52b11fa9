package repository

import (
	"context"
	"time"

	"github.com/ddouble/money-exchange/internal/model"
)

// NopRateCache is a RateCache that caches nothing. Used when caching is
// disabled or Redis is unreachable at startup.
type NopRateCache struct{}

// NewNopRateCache creates a no-op rate cache
func NewNopRateCache() *NopRateCache {
	return &NopRateCache{}
}

// SaveRates discards the table
func (NopRateCache) SaveRates(ctx context.Context, base string, table model.RateTable, ttl time.Duration) error {
	return nil
}

// GetRates always reports a cache miss
func (NopRateCache) GetRates(ctx context.Context, base string) (model.RateTable, error) {
	return nil, nil
}

// Health always succeeds
func (NopRateCache) Health(ctx context.Context) error {
	return nil
}
