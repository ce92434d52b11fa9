package model

import (
	"math"
	"strconv"
)

// RoundMoney rounds a monetary value to 2 decimal places, half away from zero.
// TODO: use cent units and integers to represent money
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseAmount parses the raw amount input. The empty string is valid and
// reports ok with a zero value; anything non-numeric reports !ok.
func ParseAmount(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatMoney renders a monetary value with 2 decimal places
func FormatMoney(v float64) string {
	return strconv.FormatFloat(RoundMoney(v), 'f', 2, 64)
}
