package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the money exchange service
type Metrics struct {
	// Rate fetch metrics
	RateFetchesTotal  *prometheus.CounterVec
	RateFetchDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Exchange metrics
	ExchangesTotal   *prometheus.CounterVec
	ExchangeDuration *prometheus.HistogramVec

	// Validation metrics
	ValidationErrorsTotal *prometheus.CounterVec

	// Session metrics
	SessionsActive prometheus.Gauge
}

// NewMetrics creates and registers all metrics
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "money_exchange"
	}

	return &Metrics{
		RateFetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_fetches_total",
				Help:      "Total number of rate table fetches",
			},
			[]string{"base", "status"},
		),

		RateFetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rate_fetch_duration_seconds",
				Help:      "Duration of rate table fetches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of rate cache hits",
			},
		),

		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of rate cache misses",
			},
		),

		ExchangesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exchanges_total",
				Help:      "Total number of settled exchanges",
			},
			[]string{"source_currency", "target_currency", "outcome"},
		),

		ExchangeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exchange_duration_seconds",
				Help:      "Duration from submission to settlement in seconds",
				Buckets:   []float64{0.5, 1, 2, 3, 5, 10},
			},
			[]string{"outcome"},
		),

		ValidationErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of validation errors raised",
			},
			[]string{"error_key"},
		),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of currently active form sessions",
			},
		),
	}
}

// RecordRateFetch records a rate fetch attempt
func (m *Metrics) RecordRateFetch(base, status, provider string, durationSeconds float64) {
	m.RateFetchesTotal.WithLabelValues(base, status).Inc()
	m.RateFetchDuration.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordCacheHit records a rate cache hit
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a rate cache miss
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordExchange records a settled exchange
func (m *Metrics) RecordExchange(source, target, outcome string, durationSeconds float64) {
	m.ExchangesTotal.WithLabelValues(source, target, outcome).Inc()
	m.ExchangeDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordValidationError records a raised validation error
func (m *Metrics) RecordValidationError(errorKey string) {
	m.ValidationErrorsTotal.WithLabelValues(errorKey).Inc()
}

// SessionOpened records a new active session
func (m *Metrics) SessionOpened() {
	m.SessionsActive.Inc()
}

// SessionClosed records a session going away
func (m *Metrics) SessionClosed() {
	m.SessionsActive.Dec()
}
