package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ddouble/money-exchange/internal/config"
	"github.com/ddouble/money-exchange/internal/events"
	"github.com/ddouble/money-exchange/internal/provider"
	"github.com/ddouble/money-exchange/internal/repository"
	"github.com/ddouble/money-exchange/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		RateCacheTTL:        60,
		ExchangeLatency:     10 * time.Millisecond,
		ExchangeErrorWindow: 50 * time.Millisecond,
		SuccessDenominator:  5,
		SessionTTL:          time.Hour,
		SweepInterval:       time.Minute,
	}
	sim := provider.NewSimulatedProvider(provider.SimulatedProviderConfig{
		MaxDrift:      0,
		DriftInterval: time.Hour,
		Seed:          42,
	})
	sessions := service.NewSessionService(cfg, sim, repository.NewNopRateCache(), events.NewNopPublisher(), nil, zap.NewNop())

	router := gin.New()
	NewHTTPHandler(sessions, zap.NewNop()).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
	}
	return w, parsed
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w, body := doJSON(t, router, http.MethodPost, "/api/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	id, _ := body["sessionId"].(string)
	if id == "" {
		t.Fatal("expected a session id in the response")
	}
	return id
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestGetCurrencies(t *testing.T) {
	router := setupRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/currencies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	currencies, _ := body["currencies"].([]any)
	if len(currencies) != 3 {
		t.Errorf("expected 3 catalog currencies, got %d", len(currencies))
	}
}

func TestSessionLifecycle(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	w, body := doJSON(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	state, _ := body["state"].(map[string]any)
	source, _ := state["source"].(map[string]any)
	if source["code"] != "usd" {
		t.Errorf("expected initial source usd, got %v", source["code"])
	}

	w, _ = doJSON(t, router, http.MethodDelete, "/api/sessions/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after close, got %d", w.Code)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	router := setupRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/sessions/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestIntentEndpoints(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	w, body := doJSON(t, router, http.MethodPut, "/api/sessions/"+id+"/destination", gin.H{"currency": "gbp"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w, body = doJSON(t, router, http.MethodPut, "/api/sessions/"+id+"/amount", gin.H{"amount": "100"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	state, _ := body["state"].(map[string]any)
	if state["amount"] != "100" {
		t.Errorf("expected amount 100, got %v", state["amount"])
	}

	w, body = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/switch", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	state, _ = body["state"].(map[string]any)
	source, _ := state["source"].(map[string]any)
	if source["code"] != "gbp" {
		t.Errorf("expected source gbp after switch, got %v", source["code"])
	}
}

func TestSetSourceRejectsUnknownCurrency(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	w, _ := doJSON(t, router, http.MethodPut, "/api/sessions/"+id+"/source", gin.H{"currency": "jpy"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSubmitWhileGatedIsConflict(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)

	// No amount, no destination: the submit action is unavailable
	w, _ := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/exchange", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}
