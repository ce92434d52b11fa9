package provider

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ddouble/money-exchange/internal/model"
)

// baseRates contains realistic mid-market rates used as the foundation for
// simulated tables, keyed as "BASE/TARGET"
var baseRates = map[string]float64{
	"USD/GBP": 0.7920,
	"USD/EUR": 0.9250,
	"GBP/USD": 1.2630,
	"GBP/EUR": 1.1680,
	"EUR/USD": 1.0810,
	"EUR/GBP": 0.8560,
}

// SimulatedProviderConfig configures the simulated rate provider
type SimulatedProviderConfig struct {
	// MaxDrift is the maximum random drift percentage (default 2%)
	MaxDrift float64

	// Spread is the margin deducted from every cross rate (default 0.5%).
	// The base's self-quote is never spread-adjusted.
	Spread float64

	// DriftInterval is how often rates drift (default 5 seconds)
	DriftInterval time.Duration

	// Seed for the random number generator (0 for current time)
	Seed int64
}

// DefaultSimulatedConfig returns default configuration
func DefaultSimulatedConfig() SimulatedProviderConfig {
	return SimulatedProviderConfig{
		MaxDrift:      0.02,  // 2%
		Spread:        0.005, // 0.5%
		DriftInterval: 5 * time.Second,
		Seed:          0,
	}
}

// SimulatedProvider serves rate tables from built-in base rates with a
// slowly drifting random component. It exists for offline development and
// deterministic tests; select it with PROVIDER_TYPE=simulated.
type SimulatedProvider struct {
	config       SimulatedProviderConfig
	rng          *rand.Rand
	mu           sync.Mutex
	currentDrift map[string]float64
	lastDrift    time.Time
}

// NewSimulatedProvider creates a new simulated rate provider
func NewSimulatedProvider(config SimulatedProviderConfig) *SimulatedProvider {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &SimulatedProvider{
		config:       config,
		rng:          rand.New(rand.NewSource(seed)),
		currentDrift: make(map[string]float64),
	}
}

// Name returns the provider name
func (p *SimulatedProvider) Name() string {
	return "simulated"
}

// FetchRates returns the simulated rate table for a base currency
func (p *SimulatedProvider) FetchRates(ctx context.Context, base string) (model.RateTable, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.updateDriftLocked()

	upperBase := strings.ToUpper(base)
	table := make(model.RateTable)
	for pair, rate := range baseRates {
		from, to, ok := splitPair(pair)
		if !ok || from != upperBase {
			continue
		}
		table[to] = rate * (1 + p.currentDrift[pair]) * (1 - p.config.Spread)
	}

	if len(table) == 0 {
		return nil, ErrUnsupportedBase{Base: base}
	}

	// A table always quotes the base against itself
	table[upperBase] = 1

	return table, nil
}

// updateDriftLocked refreshes the per-pair drift if enough time has passed
func (p *SimulatedProvider) updateDriftLocked() {
	if time.Since(p.lastDrift) < p.config.DriftInterval {
		return
	}

	for pair := range baseRates {
		// Random drift between -MaxDrift and +MaxDrift
		p.currentDrift[pair] = (p.rng.Float64()*2 - 1) * p.config.MaxDrift
	}

	p.lastDrift = time.Now()
}

// SetDrift manually sets drift for a pair (useful for testing)
func (p *SimulatedProvider) SetDrift(base, target string, drift float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentDrift[strings.ToUpper(base)+"/"+strings.ToUpper(target)] = drift
	p.lastDrift = time.Now()
}

// ResetDrift resets all drift to zero
func (p *SimulatedProvider) ResetDrift() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentDrift = make(map[string]float64)
	p.lastDrift = time.Now()
}

func splitPair(pair string) (from, to string, ok bool) {
	i := strings.IndexByte(pair, '/')
	if i <= 0 || i == len(pair)-1 {
		return "", "", false
	}
	return pair[:i], pair[i+1:], true
}
