package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ddouble/money-exchange/internal/config"
	"github.com/ddouble/money-exchange/internal/events"
	"github.com/ddouble/money-exchange/internal/handler"
	"github.com/ddouble/money-exchange/internal/metrics"
	"github.com/ddouble/money-exchange/internal/provider"
	"github.com/ddouble/money-exchange/internal/repository"
	"github.com/ddouble/money-exchange/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting Money Exchange Service",
		zap.String("environment", cfg.Environment),
		zap.Int("httpPort", cfg.HTTPPort),
		zap.String("provider", cfg.ProviderType),
	)

	// Setup rate cache
	redisClient, rateCache := setupRateCache(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Setup rate provider based on configuration
	rateProvider := setupProvider(cfg, logger)
	logger.Info("Rate provider configured", zap.String("provider", rateProvider.Name()))

	// Setup event publisher
	publisher := setupPublisher(cfg, logger)
	defer publisher.Close()

	// Setup metrics
	appMetrics := metrics.NewMetrics("money_exchange")

	// Create session service with dependency injection
	sessions := service.NewSessionService(cfg, rateProvider, rateCache, publisher, appMetrics, logger)

	// Expire idle sessions in the background
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sessions.StartSweeper(sweepCtx)

	// Setup Gin router
	router := setupRouter(cfg, logger, sessions)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting HTTP server", zap.Int("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error

	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		panic(err)
	}

	return logger
}

// setupRateCache connects to Redis, falling back to a no-op cache when the
// connection cannot be established
func setupRateCache(cfg *config.Config, logger *zap.Logger) (*redis.Client, repository.RateCache) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Warn("Redis connection failed, rate caching disabled", zap.Error(err))
		redisClient.Close()
		return nil, repository.NewNopRateCache()
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	return redisClient, repository.NewRedisRateCache(redisClient)
}

func setupProvider(cfg *config.Config, logger *zap.Logger) provider.RateProvider {
	switch cfg.ProviderType {
	case "frankfurter":
		return provider.NewFrankfurterProvider(cfg.RateAPIURL, logger)

	case "simulated":
		providerCfg := provider.DefaultSimulatedConfig()
		providerCfg.MaxDrift = cfg.ProviderMaxDrift
		providerCfg.Spread = cfg.ProviderSpread
		return provider.NewSimulatedProvider(providerCfg)

	default:
		logger.Info("Unknown provider type, defaulting to frankfurter",
			zap.String("configured", cfg.ProviderType),
		)
		return provider.NewFrankfurterProvider(cfg.RateAPIURL, logger)
	}
}

func setupPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	if !cfg.KafkaEnabled {
		return events.NewNopPublisher()
	}

	logger.Info("Kafka publisher enabled",
		zap.String("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
	)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
}

func setupRouter(cfg *config.Config, logger *zap.Logger, sessions *service.SessionService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	httpHandler := handler.NewHTTPHandler(sessions, logger)
	httpHandler.SetupRoutes(router)

	if cfg.MetricsEnabled {
		router.GET(cfg.MetricsEndpoint, gin.WrapH(promhttp.Handler()))
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		)
	}
}
