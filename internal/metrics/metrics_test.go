package metrics

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

type healthBody struct {
	Status     string `json:"status"`
	LastUpdate string `json:"lastUpdate"`
	LastError  string `json:"lastError"`
	MarketOpen bool   `json:"marketOpen"`
	WSClients  int    `json:"wsClients"`
}

func probe(t *testing.T, h *HealthStatus) (int, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	var body healthBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("healthz body: %v", err)
	}
	return rec.Code, body
}

func TestHealthzFresh(t *testing.T) {
	h := NewHealthStatus()
	h.Observe(time.Now(), false, nil, true, 3)

	code, body := probe(t, h)
	if code != 200 {
		t.Fatalf("code = %d", code)
	}
	if body.Status != "fresh" {
		t.Errorf("status = %q", body.Status)
	}
	if !body.MarketOpen || body.WSClients != 3 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestHealthzStaleWithoutError(t *testing.T) {
	h := NewHealthStatus()
	h.Observe(time.Now().Add(-time.Hour), true, nil, false, 0)

	code, body := probe(t, h)
	if code != 200 {
		t.Fatalf("code = %d, staleness alone is not an outage", code)
	}
	if body.Status != "stale" {
		t.Errorf("status = %q", body.Status)
	}
}

func TestHealthzDegraded(t *testing.T) {
	h := NewHealthStatus()
	h.Observe(time.Now().Add(-time.Hour), true, errors.New("generation failed"), false, 0)

	code, body := probe(t, h)
	if code != 503 {
		t.Fatalf("code = %d, want 503", code)
	}
	if body.Status != "degraded" {
		t.Errorf("status = %q", body.Status)
	}
	if body.LastError == "" {
		t.Error("lastError missing from degraded response")
	}
}

func TestHealthzEmptyCache(t *testing.T) {
	h := NewHealthStatus()
	code, body := probe(t, h)
	if code != 200 {
		t.Fatalf("code = %d", code)
	}
	if body.Status != "stale" {
		t.Errorf("status before first snapshot = %q", body.Status)
	}
	if body.LastUpdate != "" {
		t.Errorf("lastUpdate = %q before first snapshot", body.LastUpdate)
	}
}
