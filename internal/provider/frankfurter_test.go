package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestFetchRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("base"); got != "USD" {
			t.Errorf("expected base=USD, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"GBP":0.792,"EUR":0.925}}`))
	}))
	defer server.Close()

	p := NewFrankfurterProvider(server.URL, zap.NewNop())

	table, err := p.FetchRates(context.Background(), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table["GBP"] != 0.792 {
		t.Errorf("expected GBP rate 0.792, got %v", table["GBP"])
	}
	if table["EUR"] != 0.925 {
		t.Errorf("expected EUR rate 0.925, got %v", table["EUR"])
	}
}

func TestFetchRatesNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewFrankfurterProvider(server.URL, zap.NewNop())

	_, err := p.FetchRates(context.Background(), "usd")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if _, ok := err.(ErrProviderUnavailable); !ok {
		t.Errorf("expected ErrProviderUnavailable, got %T", err)
	}
}

func TestFetchRatesMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	p := NewFrankfurterProvider(server.URL, zap.NewNop())

	_, err := p.FetchRates(context.Background(), "usd")
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, ok := err.(ErrMalformedResponse); !ok {
		t.Errorf("expected ErrMalformedResponse, got %T", err)
	}
}

func TestFetchRatesEmptyRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{}}`))
	}))
	defer server.Close()

	p := NewFrankfurterProvider(server.URL, zap.NewNop())

	if _, err := p.FetchRates(context.Background(), "usd"); err == nil {
		t.Fatal("expected error for empty rates mapping")
	}
}

func TestFetchRatesTransportError(t *testing.T) {
	// Point at a closed server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewFrankfurterProvider(server.URL, zap.NewNop())

	_, err := p.FetchRates(context.Background(), "usd")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if _, ok := err.(ErrProviderUnavailable); !ok {
		t.Errorf("expected ErrProviderUnavailable, got %T", err)
	}
}
