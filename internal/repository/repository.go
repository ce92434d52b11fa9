package repository

import (
	"context"
	"time"

	"github.com/ddouble/money-exchange/internal/model"
)

// RateCache defines the interface for cached rate-table storage. The cache is
// an optimization only: every method may fail without affecting correctness,
// callers fall back to the provider.
type RateCache interface {
	// SaveRates stores a rate table for a base currency with TTL
	SaveRates(ctx context.Context, base string, table model.RateTable, ttl time.Duration) error

	// GetRates retrieves a cached rate table for a base currency.
	// Returns nil, nil on a cache miss.
	GetRates(ctx context.Context, base string) (model.RateTable, error)

	// Health checks if the cache is reachable
	Health(ctx context.Context) error
}
