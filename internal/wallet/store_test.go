package wallet

import (
	"testing"

	"github.com/ddouble/money-exchange/internal/model"
)

func newTestStore() *Store {
	return NewStore([]model.Wallet{
		{Currency: "usd", Balance: 200},
		{Currency: "gbp", Balance: 150},
		{Currency: "eur", Balance: 10},
	})
}

func TestLookup(t *testing.T) {
	store := newTestStore()

	w, err := store.Lookup("usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Balance != 200 {
		t.Errorf("expected balance 200, got %v", w.Balance)
	}

	_, err = store.Lookup("jpy")
	if err == nil {
		t.Fatal("expected error for unknown currency")
	}
	if _, ok := err.(ErrUnknownCurrency); !ok {
		t.Errorf("expected ErrUnknownCurrency, got %T", err)
	}
}

func TestApplyTransfer(t *testing.T) {
	store := newTestStore()

	if err := store.ApplyTransfer("usd", "gbp", 100, 75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.Balance("usd"); got != 100 {
		t.Errorf("expected usd balance 100, got %v", got)
	}
	if got := store.Balance("gbp"); got != 225 {
		t.Errorf("expected gbp balance 225, got %v", got)
	}
}

func TestApplyTransferRoundsBalances(t *testing.T) {
	store := newTestStore()

	if err := store.ApplyTransfer("usd", "eur", 33.333, 30.5555); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.Balance("usd"); got != 166.67 {
		t.Errorf("expected usd balance 166.67, got %v", got)
	}
	if got := store.Balance("eur"); got != 40.56 {
		t.Errorf("expected eur balance 40.56, got %v", got)
	}
}

func TestApplyTransferInsufficientBalance(t *testing.T) {
	store := newTestStore()

	err := store.ApplyTransfer("eur", "usd", 10.01, 11)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(ErrInsufficientBalance); !ok {
		t.Errorf("expected ErrInsufficientBalance, got %T", err)
	}

	// Refusal must not mutate either wallet
	if got := store.Balance("eur"); got != 10 {
		t.Errorf("expected eur balance unchanged at 10, got %v", got)
	}
	if got := store.Balance("usd"); got != 200 {
		t.Errorf("expected usd balance unchanged at 200, got %v", got)
	}
}

func TestApplyTransferUnknownCurrency(t *testing.T) {
	store := newTestStore()

	if err := store.ApplyTransfer("jpy", "usd", 1, 1); err == nil {
		t.Error("expected error for unknown source")
	}
	if err := store.ApplyTransfer("usd", "jpy", 1, 1); err == nil {
		t.Error("expected error for unknown destination")
	}
}

func TestBalancesNeverNegative(t *testing.T) {
	store := newTestStore()

	// Drain the eur wallet exactly
	if err := store.ApplyTransfer("eur", "usd", 10, 12.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, w := range store.All() {
		if w.Balance < 0 {
			t.Errorf("wallet %s has negative balance %v", w.Currency, w.Balance)
		}
	}
}
