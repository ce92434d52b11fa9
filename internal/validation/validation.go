// Package validation holds the pure cross-field rules of the exchange form.
// Each rule is keyed by the field that triggers it and owns exactly one
// error key, so unrelated form regions can render their error state
// independently.
package validation

import (
	"github.com/ddouble/money-exchange/internal/model"
)

// User-facing messages
const (
	MsgNoSufficientBalance = "No sufficient balance."
	MsgSameCurrency        = "Exchange can only be done in different currency."
)

// Field identifies the form field whose change triggers a rule
type Field int

const (
	FieldAmount Field = iota
	FieldSourceCurrency
	FieldDestinationCurrency
)

// Input is the slice of form state the rules read
type Input struct {
	Amount        float64 // parsed candidate amount, 0 when empty
	SourceBalance float64
	Source        string
	Destination   string // may be model.NoCurrency
}

// Rule evaluates one constraint. It reports the error key it owns and
// whether the constraint is currently violated.
type Rule func(in Input) (key model.ErrorKey, message string, violated bool)

func amountRule(in Input) (model.ErrorKey, string, bool) {
	return model.ErrorKeyAmount, MsgNoSufficientBalance, in.Amount > in.SourceBalance
}

// Both currency fields map onto the same destination-currency key: changing
// either side can introduce or clear the same-currency violation.
func currencyRule(in Input) (model.ErrorKey, string, bool) {
	violated := in.Destination != model.NoCurrency && in.Source == in.Destination
	return model.ErrorKeyDestCurrency, MsgSameCurrency, violated
}

var rules = map[Field]Rule{
	FieldAmount:              amountRule,
	FieldSourceCurrency:      currencyRule,
	FieldDestinationCurrency: currencyRule,
}

// KeyFor returns the error key owned by a field's rule
func KeyFor(field Field) model.ErrorKey {
	if field == FieldAmount {
		return model.ErrorKeyAmount
	}
	return model.ErrorKeyDestCurrency
}

// Apply runs the rule for field and sets or clears its error key in errs
func Apply(field Field, in Input, errs map[model.ErrorKey]string) {
	rule, ok := rules[field]
	if !ok {
		return
	}

	key, message, violated := rule(in)
	if violated {
		errs[key] = message
	} else {
		delete(errs, key)
	}
}

// Blocking reports whether the error set prevents a new submission. A
// solitary exchange error does not block: a stale failure notice must never
// stop the user from retrying.
func Blocking(errs map[model.ErrorKey]string) bool {
	if len(errs) == 1 {
		if _, ok := errs[model.ErrorKeyExchange]; ok {
			return false
		}
	}
	return len(errs) > 0
}
