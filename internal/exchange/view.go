package exchange

import (
	"strings"

	"github.com/ddouble/money-exchange/internal/model"
)

// View projects the current state into the purely presentational FormView.
// Nothing here mutates; the rendering layer works from this snapshot only.
func (c *Controller) View() model.FormView {
	c.mu.Lock()
	defer c.mu.Unlock()

	source, _ := model.FindCurrency(c.source)

	view := model.FormView{
		Amount:            c.amountRaw,
		Source:            source,
		SourceBalance:     c.wallets.Balance(c.source),
		Exchanging:        c.inFlight != nil,
		ExchangeSucceeded: c.succeeded,
		Errors:            make(map[model.ErrorKey]string, len(c.errs)),
	}

	for key, msg := range c.errs {
		view.Errors[key] = msg
	}

	if c.destination != model.NoCurrency {
		if dest, ok := model.FindCurrency(c.destination); ok {
			view.Destination = &dest
			balance := c.wallets.Balance(c.destination)
			view.DestinationBalance = &balance
		}
	}

	view.Rate = c.effectiveRateLocked()

	if amount, ok := model.ParseAmount(c.amountRaw); ok && c.amountRaw != "" && view.Rate != nil {
		view.ConvertedAmount = model.FormatMoney(amount * *view.Rate)
	}

	_, view.SubmitEnabled = c.submitGateLocked()
	return view
}

// effectiveRateLocked computes the displayed conversion rate: nil while the
// destination is unselected, 1 when both sides are the same currency,
// otherwise the table entry for the destination (nil when not yet fetched).
func (c *Controller) effectiveRateLocked() *float64 {
	if c.destination == model.NoCurrency {
		return nil
	}
	if c.destination == c.source {
		one := 1.0
		return &one
	}
	if rate, ok := c.rates[strings.ToUpper(c.destination)]; ok {
		return &rate
	}
	return nil
}
