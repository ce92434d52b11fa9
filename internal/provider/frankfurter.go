package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ddouble/money-exchange/internal/model"
	"go.uber.org/zap"
)

// FrankfurterProvider fetches exchange rates from a Frankfurter-compatible
// public API. It keeps no state beyond the HTTP client; any transport,
// status or parse problem is reported as a fetch failure and the caller
// keeps its last known good table.
type FrankfurterProvider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// frankfurterResponse is the subset of the API payload we consume
type frankfurterResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// NewFrankfurterProvider creates a provider against the given API base URL
func NewFrankfurterProvider(baseURL string, logger *zap.Logger) *FrankfurterProvider {
	return &FrankfurterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Name returns the provider name
func (p *FrankfurterProvider) Name() string {
	return "frankfurter"
}

// FetchRates fetches the latest rate table for a base currency
func (p *FrankfurterProvider) FetchRates(ctx context.Context, base string) (model.RateTable, error) {
	endpoint := fmt.Sprintf("%s/latest?base=%s", p.baseURL, url.QueryEscape(strings.ToUpper(base)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, ErrProviderUnavailable{Provider: p.Name(), Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrProviderUnavailable{
			Provider: p.Name(),
			Reason:   fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrProviderUnavailable{Provider: p.Name(), Reason: err.Error()}
	}

	var payload frankfurterResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrMalformedResponse{Provider: p.Name(), Reason: err.Error()}
	}

	if len(payload.Rates) == 0 {
		return nil, ErrMalformedResponse{Provider: p.Name(), Reason: "empty rates mapping"}
	}

	table := make(model.RateTable, len(payload.Rates))
	for code, rate := range payload.Rates {
		table[strings.ToUpper(code)] = rate
	}

	p.logger.Debug("Fetched rate table",
		zap.String("base", base),
		zap.Int("rates", len(table)),
	)

	return table, nil
}
