package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ddouble/money-exchange/internal/config"
	"github.com/ddouble/money-exchange/internal/events"
	"github.com/ddouble/money-exchange/internal/exchange"
	"github.com/ddouble/money-exchange/internal/metrics"
	"github.com/ddouble/money-exchange/internal/model"
	"github.com/ddouble/money-exchange/internal/provider"
	"github.com/ddouble/money-exchange/internal/repository"
	"github.com/ddouble/money-exchange/internal/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when a session id is unknown or expired
type ErrSessionNotFound struct {
	ID string
}

func (e ErrSessionNotFound) Error() string {
	return "session not found: " + e.ID
}

// session pairs a form controller with its housekeeping data
type session struct {
	id         string
	controller *exchange.Controller
	lastAccess time.Time
}

// SessionService hosts one form controller per client session. Each session
// owns its own wallet store (balances live only as long as the session), so
// sessions never observe each other's exchanges.
type SessionService struct {
	cfg       *config.Config
	provider  provider.RateProvider
	cache     repository.RateCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	// Decide is injectable for deterministic tests; nil means the default
	// random draw built from the configured denominator.
	decide exchange.OutcomeFunc

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionService creates a session service with dependency injection
func NewSessionService(
	cfg *config.Config,
	rateProvider provider.RateProvider,
	rateCache repository.RateCache,
	publisher events.Publisher,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		cfg:       cfg,
		provider:  rateProvider,
		cache:     rateCache,
		publisher: publisher,
		metrics:   appMetrics,
		logger:    logger,
		decide:    exchange.RandomOutcome(cfg.SuccessDenominator),
		sessions:  make(map[string]*session),
	}
}

// SetOutcomeFunc overrides the exchange outcome decision for sessions created
// afterwards. Intended for tests.
func (s *SessionService) SetOutcomeFunc(decide exchange.OutcomeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decide = decide
}

// CreateSession opens a new form session and returns its id
func (s *SessionService) CreateSession() (string, model.FormView) {
	s.mu.Lock()
	decide := s.decide
	s.mu.Unlock()

	id := uuid.New().String()

	controller := exchange.NewController(exchange.Deps{
		Wallets:     wallet.NewStore(model.SeedWallets()),
		FetchRates:  s.fetchRates,
		Decide:      decide,
		Logger:      s.logger.With(zap.String("sessionId", id)),
		Latency:     s.cfg.ExchangeLatency,
		ErrorWindow: s.cfg.ExchangeErrorWindow,
		OnOutcome:   s.outcomeHook(id),
		OnValidationError: func(key model.ErrorKey) {
			if s.metrics != nil {
				s.metrics.RecordValidationError(string(key))
			}
		},
	})

	s.mu.Lock()
	s.sessions[id] = &session{
		id:         id,
		controller: controller,
		lastAccess: time.Now(),
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Info("Session created", zap.String("sessionId", id))

	return id, controller.View()
}

// Controller returns the form controller for a session id
func (s *SessionService) Controller(id string) (*exchange.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound{ID: id}
	}
	sess.lastAccess = time.Now()
	return sess.controller, nil
}

// CloseSession drops a session and releases its controller
func (s *SessionService) CloseSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound{ID: id}
	}

	sess.controller.Close()
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	return nil
}

// Sweep drops sessions idle longer than the configured TTL. Run periodically
// from main.
func (s *SessionService) Sweep() int {
	cutoff := time.Now().Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.lastAccess.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.controller.Close()
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
		s.logger.Info("Session expired", zap.String("sessionId", sess.id))
	}

	return len(expired)
}

// StartSweeper runs Sweep on the configured interval until ctx is cancelled
func (s *SessionService) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Health checks the service and its cache dependency
func (s *SessionService) Health(ctx context.Context) error {
	return s.cache.Health(ctx)
}

// fetchRates is the composite fetch the controllers use: cache first, then
// the provider, storing successful fetches back with TTL. Cache failures
// degrade to a plain provider fetch.
func (s *SessionService) fetchRates(ctx context.Context, base string) (model.RateTable, error) {
	start := time.Now()

	cached, err := s.cache.GetRates(ctx, base)
	if err != nil {
		s.logger.Warn("Rate cache lookup failed", zap.Error(err))
	}
	if cached != nil {
		if s.metrics != nil {
			s.metrics.RecordCacheHit()
			s.metrics.RecordRateFetch(base, "success", "cache", time.Since(start).Seconds())
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}

	table, err := s.provider.FetchRates(ctx, base)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRateFetch(base, "error", s.provider.Name(), time.Since(start).Seconds())
		}
		return nil, err
	}

	ttl := time.Duration(s.cfg.RateCacheTTL) * time.Second
	if err := s.cache.SaveRates(ctx, base, table, ttl); err != nil {
		s.logger.Warn("Failed to cache rate table", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.RecordRateFetch(base, "success", s.provider.Name(), time.Since(start).Seconds())
	}
	return table, nil
}

// outcomeHook wires a settled exchange into metrics and the event publisher
func (s *SessionService) outcomeHook(sessionID string) func(model.ExchangeSnapshot, string, float64) {
	return func(snap model.ExchangeSnapshot, outcome string, converted float64) {
		if s.metrics != nil {
			s.metrics.RecordExchange(snap.Source, snap.Destination, outcome, time.Since(snap.SubmittedAt).Seconds())
		}

		if outcome != exchange.OutcomeCommitted {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := model.ExchangeCompletedEvent{
			SessionID:       sessionID,
			SourceCurrency:  snap.Source,
			TargetCurrency:  snap.Destination,
			Amount:          snap.Amount,
			ConvertedAmount: converted,
			Rate:            snap.Rates[strings.ToUpper(snap.Destination)],
			CompletedAt:     time.Now(),
		}

		// Best-effort: a broker problem never fails the exchange
		_ = s.publisher.PublishExchangeCompleted(ctx, event)
	}
}
