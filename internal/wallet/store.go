package wallet

import (
	"sync"

	"github.com/ddouble/money-exchange/internal/model"
)

// ErrUnknownCurrency is returned when a wallet is requested for a currency
// outside the catalog. Every catalog currency has exactly one wallet, so
// hitting this is a programming error rather than a user-facing condition.
type ErrUnknownCurrency struct {
	Currency string
}

func (e ErrUnknownCurrency) Error() string {
	return "no wallet for currency: " + e.Currency
}

// ErrInsufficientBalance is returned when a transfer would overdraw the
// source wallet at commit time.
type ErrInsufficientBalance struct {
	Currency string
}

func (e ErrInsufficientBalance) Error() string {
	return "insufficient balance in wallet: " + e.Currency
}

// Store holds the in-memory wallet balances for the running session.
// All access is serialized by the store lock; balances never go negative.
type Store struct {
	mu      sync.Mutex
	wallets map[string]*model.Wallet
}

// NewStore creates a store with one wallet per given seed entry
func NewStore(seed []model.Wallet) *Store {
	wallets := make(map[string]*model.Wallet, len(seed))
	for _, w := range seed {
		w := w
		wallets[w.Currency] = &w
	}
	return &Store{wallets: wallets}
}

// Lookup returns a copy of the wallet for a currency code
func (s *Store) Lookup(currency string) (model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[currency]
	if !ok {
		return model.Wallet{}, ErrUnknownCurrency{Currency: currency}
	}
	return *w, nil
}

// Balance returns the current balance for a currency code, or 0 when the
// currency is unknown (used for sentinel destinations).
func (s *Store) Balance(currency string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.wallets[currency]; ok {
		return w.Balance
	}
	return 0
}

// All returns a snapshot of every wallet
func (s *Store) All() []model.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, *w)
	}
	return out
}

// ApplyTransfer atomically debits amount from the source wallet and credits
// convertedAmount to the destination wallet, rounding both resulting balances
// to 2 decimal places. It refuses to mutate anything when the source balance
// is insufficient at commit time; that check is authoritative and independent
// of any validation done before submission.
func (s *Store) ApplyTransfer(from, to string, amount, convertedAmount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.wallets[from]
	if !ok {
		return ErrUnknownCurrency{Currency: from}
	}
	dst, ok := s.wallets[to]
	if !ok {
		return ErrUnknownCurrency{Currency: to}
	}

	if src.Balance < amount {
		return ErrInsufficientBalance{Currency: from}
	}

	src.Balance = model.RoundMoney(src.Balance - amount)
	dst.Balance = model.RoundMoney(dst.Balance + convertedAmount)
	return nil
}
