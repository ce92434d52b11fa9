package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the money exchange service
type Config struct {
	// Server
	HTTPPort int

	// Redis connection (rate cache)
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Observability
	MetricsEnabled  bool
	MetricsEndpoint string

	// Environment
	Environment string
	LogLevel    string

	// Rate provider
	ProviderType     string  // "frankfurter" or "simulated"
	RateAPIURL       string  // base URL of the Frankfurter-compatible API
	RateCacheTTL     int     // seconds
	ProviderSpread   float64 // base spread for the simulated provider
	ProviderMaxDrift float64 // max drift for the simulated provider

	// Exchange simulation
	ExchangeLatency     time.Duration // simulated server round trip
	ExchangeErrorWindow time.Duration // how long a failed-exchange error stays visible
	SuccessDenominator  int           // failure odds are 1 in SuccessDenominator

	// Session housekeeping
	SessionTTL    time.Duration // idle sessions are dropped after this
	SweepInterval time.Duration

	// Kafka events
	KafkaEnabled bool
	KafkaBrokers string
	KafkaTopic   string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// Server
		HTTPPort: getEnvInt("HTTP_PORT", 8083),

		// Redis connection
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASSWORD", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		// Observability
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		MetricsEndpoint: getEnv("METRICS_ENDPOINT", "/metrics"),

		// Environment
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Rate provider
		ProviderType:     getEnv("PROVIDER_TYPE", "frankfurter"),
		RateAPIURL:       getEnv("RATE_API_URL", "https://api.frankfurter.app"),
		RateCacheTTL:     getEnvInt("RATE_CACHE_TTL", 60),
		ProviderSpread:   getEnvFloat("PROVIDER_SPREAD", 0.005),
		ProviderMaxDrift: getEnvFloat("PROVIDER_MAX_DRIFT", 0.02),

		// Exchange simulation
		ExchangeLatency:     getEnvDuration("EXCHANGE_LATENCY", 2*time.Second),
		ExchangeErrorWindow: getEnvDuration("EXCHANGE_ERROR_WINDOW", 10*time.Second),
		SuccessDenominator:  getEnvInt("SUCCESS_DENOMINATOR", 5),

		// Session housekeeping
		SessionTTL:    getEnvDuration("SESSION_TTL", 30*time.Minute),
		SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		// Kafka events
		KafkaEnabled: getEnvBool("KAFKA_ENABLED", false),
		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "exchange.completed"),
	}
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
