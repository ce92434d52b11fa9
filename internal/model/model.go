package model

import (
	"time"
)

// NoCurrency is the sentinel destination value meaning "not selected yet".
const NoCurrency = "none"

// Currency describes one entry of the fixed currency catalog
type Currency struct {
	Code  string `json:"code"`  // lowercase id, e.g. "usd"
	Label string `json:"label"` // display label, e.g. "USD"
	Unit  string `json:"unit"`  // unit symbol, e.g. "$"
}

// Wallet holds the balance for one catalog currency
type Wallet struct {
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
}

// RateTable maps UPPERCASE currency codes to rates relative to a base currency.
// A table is only meaningful for the base it was fetched for and is replaced
// wholesale on refresh, never merged.
type RateTable map[string]float64

// Clone returns an independent copy of the table
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for code, rate := range t {
		out[code] = rate
	}
	return out
}

// ErrorKey identifies one independently clearable error condition
type ErrorKey string

const (
	// ErrorKeyAmount is set when the entered amount exceeds the source balance
	ErrorKeyAmount ErrorKey = "amount"

	// ErrorKeyDestCurrency is set when source and destination are the same
	// concrete currency. Both currency fields map to this one key.
	ErrorKeyDestCurrency ErrorKey = "destination-currency"

	// ErrorKeyRateFetch is set when the last rate refresh failed
	ErrorKeyRateFetch ErrorKey = "rate-fetch"

	// ErrorKeyExchange is set when a simulated exchange fails
	ErrorKeyExchange ErrorKey = "exchange"
)

// ExchangeSnapshot is the immutable capture taken when an exchange is
// submitted. The settle step works from this snapshot only, never from the
// live form state.
type ExchangeSnapshot struct {
	Amount      float64   `json:"amount"`
	Rates       RateTable `json:"rates"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// FormView is the derived, purely presentational projection of the form state
type FormView struct {
	Amount             string             `json:"amount"`
	Source             Currency           `json:"source"`
	Destination        *Currency          `json:"destination,omitempty"`
	SourceBalance      float64            `json:"sourceBalance"`
	DestinationBalance *float64           `json:"destinationBalance,omitempty"`
	Rate               *float64           `json:"rate,omitempty"`
	ConvertedAmount    string             `json:"convertedAmount"`
	Exchanging         bool               `json:"exchanging"`
	ExchangeSucceeded  bool               `json:"exchangeSucceeded"`
	SubmitEnabled      bool               `json:"submitEnabled"`
	Errors             map[ErrorKey]string `json:"errors"`
}

// ExchangeCompletedEvent is published after a committed exchange
type ExchangeCompletedEvent struct {
	SessionID       string    `json:"sessionId"`
	SourceCurrency  string    `json:"sourceCurrency"`
	TargetCurrency  string    `json:"targetCurrency"`
	Amount          float64   `json:"amount"`
	ConvertedAmount float64   `json:"convertedAmount"`
	Rate            float64   `json:"rate"`
	CompletedAt     time.Time `json:"completedAt"`
}

// Catalog is the fixed set of supported currencies
var Catalog = []Currency{
	{Code: "usd", Label: "USD", Unit: "$"},
	{Code: "gbp", Label: "GBP", Unit: "£"},
	{Code: "eur", Label: "EUR", Unit: "€"},
}

// SeedWallets returns the session-start balances, one wallet per catalog currency
func SeedWallets() []Wallet {
	return []Wallet{
		{Currency: "usd", Balance: 200},
		{Currency: "gbp", Balance: 150},
		{Currency: "eur", Balance: 10},
	}
}

// FindCurrency looks up a catalog entry by its lowercase code
func FindCurrency(code string) (Currency, bool) {
	for _, c := range Catalog {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}
