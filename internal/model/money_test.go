package model

import (
	"testing"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{75.004, 75.0},
		{75.005, 75.01},
		{166.666, 166.67},
		{0.125, 0.13},
		{-0.125, -0.13},
		// -1.005 sits just below the exact half in float64, so the
		// half-away-from-zero rounding never sees a half here.
		{-1.005, -1.0},
		{0, 0},
	}

	for _, tt := range tests {
		if got := RoundMoney(tt.in); got != tt.want {
			t.Errorf("RoundMoney(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	if v, ok := ParseAmount(""); !ok || v != 0 {
		t.Error("expected empty string to parse as 0, ok")
	}
	if v, ok := ParseAmount("123.45"); !ok || v != 123.45 {
		t.Errorf("expected 123.45, got %v ok=%v", v, ok)
	}
	if _, ok := ParseAmount("abc"); ok {
		t.Error("expected non-numeric input to report !ok")
	}
	if _, ok := ParseAmount("NaN"); ok {
		t.Error("expected NaN to report !ok")
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(75); got != "75.00" {
		t.Errorf("expected 75.00, got %q", got)
	}
	if got := FormatMoney(0.125); got != "0.13" {
		t.Errorf("expected 0.13, got %q", got)
	}
}

func TestFindCurrency(t *testing.T) {
	c, ok := FindCurrency("usd")
	if !ok || c.Label != "USD" || c.Unit != "$" {
		t.Errorf("unexpected catalog entry: %+v ok=%v", c, ok)
	}

	if _, ok := FindCurrency("jpy"); ok {
		t.Error("expected jpy to be absent from the catalog")
	}
}
