// Package exchange implements the exchange form state machine: cross-field
// validation, the asynchronous rate refresh with stale-response handling, and
// the simulated exchange transaction with randomized outcome, balance
// mutation and timed error recovery.
package exchange

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ddouble/money-exchange/internal/model"
	"github.com/ddouble/money-exchange/internal/validation"
	"github.com/ddouble/money-exchange/internal/wallet"
	"go.uber.org/zap"
)

// User-facing exchange failure message for a plain unlucky draw
const MsgExchangeFailed = "Exchange failed"

// Exchange outcomes as reported to the OnOutcome hook
const (
	OutcomeCommitted = "committed"
	OutcomeFailed    = "failed"
)

// ErrSubmitUnavailable is returned when Submit is called while the submit
// action is gated off (bad amount, same currency, exchange in flight, or a
// blocking error).
type ErrSubmitUnavailable struct {
	Reason string
}

func (e ErrSubmitUnavailable) Error() string {
	return "submit unavailable: " + e.Reason
}

// ErrCurrencyNotInCatalog is returned for a currency code outside the catalog
type ErrCurrencyNotInCatalog struct {
	Code string
}

func (e ErrCurrencyNotInCatalog) Error() string {
	return "currency not in catalog: " + e.Code
}

// FetchFunc fetches the rate table for a base currency. The controller calls
// it from its own goroutine; implementations typically layer a cache over a
// rate provider.
type FetchFunc func(ctx context.Context, base string) (model.RateTable, error)

// Deps carries everything a Controller needs injected
type Deps struct {
	Wallets    *wallet.Store
	FetchRates FetchFunc
	Decide     OutcomeFunc // nil means RandomOutcome(5)
	Logger     *zap.Logger // nil means zap.NewNop()

	Latency     time.Duration // simulated exchange round trip
	ErrorWindow time.Duration // how long a failed-exchange error stays visible

	// OnOutcome, when set, is called once per settled exchange, outside the
	// controller lock. converted is only meaningful for OutcomeCommitted.
	OnOutcome func(snap model.ExchangeSnapshot, outcome string, converted float64)

	// OnValidationError, when set, is called whenever a rule newly raises
	// its error key. Used for metrics.
	OnValidationError func(key model.ErrorKey)
}

// Controller owns one form's state. Every mutation goes through the
// controller mutex, which is the single serialization point keeping the
// at-most-one-in-flight-exchange invariant; the rate fetch and settle
// goroutines re-enter through the same lock.
type Controller struct {
	mu sync.Mutex

	wallets *wallet.Store
	fetch   FetchFunc
	decide  OutcomeFunc
	logger  *zap.Logger

	latency      time.Duration
	errorWindow  time.Duration
	onOutcome    func(model.ExchangeSnapshot, string, float64)
	onValidation func(model.ErrorKey)

	ctx    context.Context
	cancel context.CancelFunc

	amountRaw   string
	source      string
	destination string
	rates       model.RateTable

	inFlight  *model.ExchangeSnapshot
	succeeded bool
	errs      map[model.ErrorKey]string

	// fetchSeq tags each rate refresh; a response is applied only while its
	// tag is still current, so a late answer for a superseded source can
	// never overwrite a newer table.
	fetchSeq uint64

	// errorSeq guards the failure display window: an older window's timer
	// must not clear a newer exchange error.
	errorSeq uint64

	settleTimer *time.Timer
	errorTimer  *time.Timer
}

// NewController creates a controller in its initial state (source "usd",
// destination unselected, empty amount) and kicks off the first rate refresh.
func NewController(deps Deps) *Controller {
	if deps.Decide == nil {
		deps.Decide = RandomOutcome(5)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Latency <= 0 {
		deps.Latency = 2 * time.Second
	}
	if deps.ErrorWindow <= 0 {
		deps.ErrorWindow = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		wallets:      deps.Wallets,
		fetch:        deps.FetchRates,
		decide:       deps.Decide,
		logger:       deps.Logger,
		latency:      deps.Latency,
		errorWindow:  deps.ErrorWindow,
		onOutcome:    deps.OnOutcome,
		onValidation: deps.OnValidationError,
		ctx:          ctx,
		cancel:       cancel,
		source:       "usd",
		destination:  model.NoCurrency,
		rates:        model.RateTable{},
		errs:         make(map[model.ErrorKey]string),
	}

	c.mu.Lock()
	c.validateLocked(validation.FieldSourceCurrency)
	c.validateLocked(validation.FieldDestinationCurrency)
	c.refreshRatesLocked()
	c.mu.Unlock()

	return c
}

// Close cancels the outstanding rate fetch and stops pending timers. A
// Pending exchange is abandoned without settling.
func (c *Controller) Close() {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settleTimer != nil {
		c.settleTimer.Stop()
	}
	if c.errorTimer != nil {
		c.errorTimer.Stop()
	}
}

// SetAmount applies an amount-changed intent. The amount is frozen while an
// exchange is in flight.
func (c *Controller) SetAmount(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight != nil {
		return
	}

	c.amountRaw = strings.TrimSpace(raw)
	c.validateLocked(validation.FieldAmount)
}

// SetSource applies a source-currency-changed intent. Changing the source
// clears the amount and triggers a rate refresh for the new base.
func (c *Controller) SetSource(code string) error {
	if _, ok := model.FindCurrency(code); !ok {
		return ErrCurrencyNotInCatalog{Code: code}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if code == c.source {
		return nil
	}

	c.source = code
	c.amountRaw = ""
	c.validateLocked(validation.FieldSourceCurrency)
	c.validateLocked(validation.FieldAmount)
	c.refreshRatesLocked()
	return nil
}

// SetDestination applies a destination-currency-changed intent. The sentinel
// "none" deselects the destination. Rates are fetched relative to the source
// only, so no refresh happens here.
func (c *Controller) SetDestination(code string) error {
	if code != model.NoCurrency {
		if _, ok := model.FindCurrency(code); !ok {
			return ErrCurrencyNotInCatalog{Code: code}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.destination = code
	c.validateLocked(validation.FieldDestinationCurrency)
	return nil
}

// Switch swaps source and destination. A no-op while the destination is
// unselected.
func (c *Controller) Switch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destination == model.NoCurrency || c.destination == c.source {
		return
	}

	c.source, c.destination = c.destination, c.source
	c.amountRaw = ""
	c.validateLocked(validation.FieldSourceCurrency)
	c.validateLocked(validation.FieldDestinationCurrency)
	c.validateLocked(validation.FieldAmount)
	c.refreshRatesLocked()
}

// Submit starts the simulated exchange if the submit action is available.
// While an exchange is Pending, further submits are rejected.
func (c *Controller) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason, ok := c.submitGateLocked(); !ok {
		return ErrSubmitUnavailable{Reason: reason}
	}

	amount, _ := model.ParseAmount(c.amountRaw)

	// Immutable capture of everything the settle step needs
	snap := &model.ExchangeSnapshot{
		Amount:      amount,
		Rates:       c.rates.Clone(),
		Source:      c.source,
		Destination: c.destination,
		SubmittedAt: time.Now(),
	}

	c.inFlight = snap
	c.succeeded = false
	delete(c.errs, model.ErrorKeyExchange)

	c.logger.Info("Exchange submitted",
		zap.String("source", snap.Source),
		zap.String("destination", snap.Destination),
		zap.Float64("amount", snap.Amount),
	)

	c.settleTimer = time.AfterFunc(c.latency, func() {
		c.settle(snap)
	})

	return nil
}

// DismissSuccess acknowledges the success notice and returns the machine to
// Idle. Ignored unless a committed exchange is waiting for dismissal.
func (c *Controller) DismissSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.succeeded {
		return
	}
	c.succeeded = false
	c.inFlight = nil
}

// settle runs after the simulated latency and decides the exchange outcome.
// The random draw can fail the exchange, but the wallet store's own balance
// check is authoritative: insufficient funds force a failure no matter what
// was drawn.
func (c *Controller) settle(snap *model.ExchangeSnapshot) {
	c.mu.Lock()

	if c.inFlight != snap {
		// Controller was closed or reset while the timer was pending
		c.mu.Unlock()
		return
	}

	rate := snap.Rates[strings.ToUpper(snap.Destination)]
	converted := model.RoundMoney(snap.Amount * rate)

	outcome := OutcomeCommitted
	failMsg := ""

	switch {
	case rate <= 0:
		outcome = OutcomeFailed
		failMsg = MsgExchangeFailed

	case c.decide() == 0:
		outcome = OutcomeFailed
		failMsg = MsgExchangeFailed
		if c.wallets.Balance(snap.Source) < snap.Amount {
			failMsg = validation.MsgNoSufficientBalance
		}

	default:
		if err := c.wallets.ApplyTransfer(snap.Source, snap.Destination, snap.Amount, converted); err != nil {
			outcome = OutcomeFailed
			failMsg = MsgExchangeFailed
			if _, ok := err.(wallet.ErrInsufficientBalance); ok {
				failMsg = validation.MsgNoSufficientBalance
			}
		}
	}

	if outcome == OutcomeCommitted {
		c.amountRaw = ""
		c.succeeded = true
		c.validateLocked(validation.FieldAmount)
		c.logger.Info("Exchange committed",
			zap.String("source", snap.Source),
			zap.String("destination", snap.Destination),
			zap.Float64("amount", snap.Amount),
			zap.Float64("converted", converted),
		)
	} else {
		c.errs[model.ErrorKeyExchange] = failMsg
		c.inFlight = nil
		c.succeeded = false

		c.errorSeq++
		seq := c.errorSeq
		c.errorTimer = time.AfterFunc(c.errorWindow, func() {
			c.clearExchangeError(seq)
		})

		c.logger.Info("Exchange failed",
			zap.String("source", snap.Source),
			zap.String("destination", snap.Destination),
			zap.Float64("amount", snap.Amount),
			zap.String("reason", failMsg),
		)
	}

	hook := c.onOutcome
	c.mu.Unlock()

	if hook != nil {
		hook(*snap, outcome, converted)
	}
}

// clearExchangeError auto-clears the failure notice once its display window
// elapses, unless a newer failure has replaced it in the meantime
func (c *Controller) clearExchangeError(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errorSeq != seq {
		return
	}
	delete(c.errs, model.ErrorKeyExchange)
}

// refreshRatesLocked starts an asynchronous rate refresh for the current
// source. The response is tagged with a sequence number and dropped if a
// later refresh superseded it before it arrived.
func (c *Controller) refreshRatesLocked() {
	if c.fetch == nil {
		return
	}

	c.fetchSeq++
	seq := c.fetchSeq
	base := c.source

	go func() {
		table, err := c.fetch(c.ctx, base)

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.fetchSeq != seq {
			c.logger.Debug("Dropping stale rate response", zap.String("base", base))
			return
		}

		if err != nil {
			// Keep the last known good table; the error is surfaced
			// alongside the stale rates.
			c.errs[model.ErrorKeyRateFetch] = "Cannot update exchange rates [ " + err.Error() + " ]"
			c.logger.Warn("Rate refresh failed", zap.String("base", base), zap.Error(err))
			return
		}

		c.rates = table
		delete(c.errs, model.ErrorKeyRateFetch)
	}()
}

// validateLocked re-runs the rule owned by field against the current state
func (c *Controller) validateLocked(field validation.Field) {
	key := validation.KeyFor(field)
	_, had := c.errs[key]

	amount, _ := model.ParseAmount(c.amountRaw)
	validation.Apply(field, validation.Input{
		Amount:        amount,
		SourceBalance: c.wallets.Balance(c.source),
		Source:        c.source,
		Destination:   c.destination,
	}, c.errs)

	if _, has := c.errs[key]; has && !had && c.onValidation != nil {
		c.onValidation(key)
	}
}

// submitGateLocked evaluates the submit availability predicate
func (c *Controller) submitGateLocked() (reason string, ok bool) {
	amount, numeric := model.ParseAmount(c.amountRaw)
	switch {
	case c.amountRaw == "" || !numeric || amount <= 0:
		return "amount is not a positive number", false
	case c.destination == model.NoCurrency:
		return "destination currency not selected", false
	case c.destination == c.source:
		return "source and destination are the same", false
	case c.inFlight != nil:
		return "exchange already in progress", false
	case validation.Blocking(c.errs):
		return "blocking error present", false
	}
	return "", true
}
