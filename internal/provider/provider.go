package provider

import (
	"context"

	"github.com/ddouble/money-exchange/internal/model"
)

// RateProvider defines the interface for exchange rate providers.
// This follows the adapter pattern - implementations can be swapped.
type RateProvider interface {
	// FetchRates returns the full rate table for a base currency. The table
	// maps UPPERCASE currency codes to rates relative to base.
	FetchRates(ctx context.Context, base string) (model.RateTable, error)

	// Name returns the provider name (e.g., "frankfurter", "simulated")
	Name() string
}

// ErrProviderUnavailable is returned when the provider cannot be reached
// or answers with a non-2xx status
type ErrProviderUnavailable struct {
	Provider string
	Reason   string
}

func (e ErrProviderUnavailable) Error() string {
	return "provider " + e.Provider + " unavailable: " + e.Reason
}

// ErrMalformedResponse is returned when the provider payload cannot be parsed
type ErrMalformedResponse struct {
	Provider string
	Reason   string
}

func (e ErrMalformedResponse) Error() string {
	return "provider " + e.Provider + " returned malformed response: " + e.Reason
}

// ErrUnsupportedBase is returned when a base currency is not supported
type ErrUnsupportedBase struct {
	Base string
}

func (e ErrUnsupportedBase) Error() string {
	return "unsupported base currency: " + e.Base
}
