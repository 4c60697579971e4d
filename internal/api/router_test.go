package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cse-market-data/internal/cache"
	"cse-market-data/internal/marketdata/agg"
	"cse-market-data/internal/model"
	"cse-market-data/internal/registry"
)

var testGeneratedAt = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testSnapshot() *model.Snapshot {
	quotes := []model.Quote{
		{Symbol: "ATW", Name: "Attijariwafa Bank", Sector: "Banking", Price: 520, Change: 10, ChangePercent: 1.96, Volume: 120000, MarketCap: 1.07e11, Signal: model.SignalBuy},
		{Symbol: "BCP", Name: "Banque Centrale Populaire", Sector: "Banking", Price: 270, Change: -5, ChangePercent: -1.82, Volume: 90000, MarketCap: 5.5e10, Signal: model.SignalSell},
		{Symbol: "IAM", Name: "Itissalat Al-Maghrib", Sector: "Telecommunications", Price: 142, Change: 0, ChangePercent: 0, Volume: 200000, MarketCap: 1.25e11, Signal: model.SignalHold},
		{Symbol: "HPS", Name: "HPS", Sector: "Technology", Price: 610, Change: 22, ChangePercent: 3.74, Volume: 15000, MarketCap: 4.3e9, Signal: model.SignalStrongBuy},
	}
	summary, sectors, index := agg.Aggregate(quotes)
	return &model.Snapshot{
		Quotes:        quotes,
		MarketSummary: summary,
		Sectors:       sectors,
		Index:         index,
		GeneratedAt:   testGeneratedAt,
	}
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	c := cache.New(cache.Config{
		Generator: func(ts time.Time, open bool) (*model.Snapshot, error) {
			return testSnapshot(), nil
		},
		Now: func() time.Time { return testGeneratedAt },
	})
	if _, err := c.Refresh(); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Deps{
		Cache:       c,
		Registry:    registry.Default(),
		MarketOpen:  func() bool { return true },
		ClientCount: func() int { return 2 },
		Env:         "test",
		StartedAt:   testGeneratedAt.Add(-time.Hour),
		Now:         func() time.Time { return testGeneratedAt },
	})
	return mux
}

func get(t *testing.T, mux *http.ServeMux, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: invalid JSON: %v\nbody: %s", path, err, rec.Body.String())
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/health")
	if rec.Code != 200 {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["status"] != "healthy" || body["cacheState"] != "fresh" {
		t.Errorf("unexpected health %+v", body)
	}
	if body["connectedClients"].(float64) != 2 {
		t.Errorf("connectedClients = %v", body["connectedClients"])
	}
	if body["marketOpen"] != true {
		t.Errorf("marketOpen = %v", body["marketOpen"])
	}
}

func TestStocksList(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/stocks")
	if rec.Code != 200 {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["totalStocks"].(float64) != 4 {
		t.Errorf("totalStocks = %v", body["totalStocks"])
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestStocksSectorFilter(t *testing.T) {
	mux := newTestMux(t)
	_, body := get(t, mux, "/api/stocks?sector=bank")
	stocks := body["stocks"].([]any)
	if len(stocks) != 2 {
		t.Fatalf("bank sector matched %d stocks, want 2 (ATW, BCP)", len(stocks))
	}
}

func TestStocksLimitValidation(t *testing.T) {
	mux := newTestMux(t)
	for _, bad := range []string{"0", "101", "x"} {
		rec, _ := get(t, mux, "/api/stocks?limit="+bad)
		if rec.Code != 400 {
			t.Errorf("limit=%s: code = %d, want 400", bad, rec.Code)
		}
	}
	_, body := get(t, mux, "/api/stocks?limit=2")
	if len(body["stocks"].([]any)) != 2 {
		t.Error("limit=2 not applied")
	}
}

func TestStockBySymbol(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/stocks/atw")
	if rec.Code != 200 {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["symbol"] != "ATW" {
		t.Errorf("symbol = %v", body["symbol"])
	}
}

func TestStockNotFoundListsValidSymbols(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/stocks/NOPE")
	if rec.Code != 404 {
		t.Fatalf("code = %d", rec.Code)
	}
	symbols, ok := body["availableSymbols"].([]any)
	if !ok || len(symbols) != registry.Default().Len() {
		t.Errorf("availableSymbols = %v", body["availableSymbols"])
	}
}

func TestStockHistory(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/stocks/ATW/history?days=10")
	if rec.Code != 200 {
		t.Fatalf("code = %d", rec.Code)
	}
	if got := len(body["history"].([]any)); got != 10 {
		t.Errorf("history length = %d", got)
	}
	if body["period"] != "10 days" {
		t.Errorf("period = %v", body["period"])
	}

	for _, bad := range []string{"0", "366", "x"} {
		rec, _ := get(t, mux, "/api/stocks/ATW/history?days="+bad)
		if rec.Code != 400 {
			t.Errorf("days=%s: code = %d, want 400", bad, rec.Code)
		}
	}

	rec, _ = get(t, mux, "/api/stocks/NOPE/history")
	if rec.Code != 404 {
		t.Errorf("unknown symbol history: code = %d", rec.Code)
	}
}

func TestMarketSummary(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/market-summary")
	if rec.Code != 200 {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["marketStatus"] != "OPEN" {
		t.Errorf("marketStatus = %v", body["marketStatus"])
	}
	summary := body["marketSummary"].(map[string]any)
	if summary["totalStocks"].(float64) != 4 {
		t.Errorf("totalStocks = %v", summary["totalStocks"])
	}
}

func TestMasi(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/masi")
	if rec.Code != 200 {
		t.Fatalf("code = %d", rec.Code)
	}
	if body["index"] != "MASI" {
		t.Errorf("index = %v", body["index"])
	}
}

func TestScreenerRangeValidation(t *testing.T) {
	mux := newTestMux(t)
	cases := []string{
		"minVolume=100&maxVolume=50",
		"minPrice=10&maxPrice=5",
		"minMarketCap=2&maxMarketCap=1",
		"minPrice=-1",
		"sortBy=bogus",
		"sortOrder=sideways",
	}
	for _, qs := range cases {
		rec, _ := get(t, mux, "/api/screener?"+qs)
		if rec.Code != 400 {
			t.Errorf("%s: code = %d, want 400", qs, rec.Code)
		}
	}
}

func TestScreenerFilterAndSort(t *testing.T) {
	mux := newTestMux(t)
	_, body := get(t, mux, "/api/screener?minPrice=200&sortBy=price&sortOrder=desc")
	stocks := body["stocks"].([]any)
	if len(stocks) != 3 {
		t.Fatalf("matched %d stocks, want 3", len(stocks))
	}
	first := stocks[0].(map[string]any)
	if first["symbol"] != "HPS" {
		t.Errorf("first by price desc = %v, want HPS", first["symbol"])
	}
}

func TestScreenerSectorExactMatch(t *testing.T) {
	mux := newTestMux(t)
	_, body := get(t, mux, "/api/screener?sector=Banking")
	if got := body["totalResults"].(float64); got != 2 {
		t.Errorf("Banking matched %v stocks, want 2", got)
	}
	// Substring is not enough for the screener's sector filter.
	_, body = get(t, mux, "/api/screener?sector=Bank")
	if got := body["totalResults"].(float64); got != 0 {
		t.Errorf("partial sector matched %v stocks, want 0", got)
	}
}

func TestSearch(t *testing.T) {
	mux := newTestMux(t)
	rec, _ := get(t, mux, "/api/search")
	if rec.Code != 400 {
		t.Fatalf("missing query: code = %d", rec.Code)
	}

	_, body := get(t, mux, "/api/search?q=telecom")
	results := body["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("telecom matched %d, want 1 (IAM)", len(results))
	}
	if results[0].(map[string]any)["symbol"] != "IAM" {
		t.Errorf("result = %v", results[0])
	}
}

func TestSignalsBuckets(t *testing.T) {
	mux := newTestMux(t)
	rec, body := get(t, mux, "/api/signals")
	if rec.Code != 200 {
		t.Fatalf("code = %d", rec.Code)
	}
	if got := len(body["strongBuys"].([]any)); got != 1 {
		t.Errorf("strongBuys = %d, want 1", got)
	}
	if got := len(body["buys"].([]any)); got != 1 {
		t.Errorf("buys = %d, want 1", got)
	}
	if got := len(body["sells"].([]any)); got != 1 {
		t.Errorf("sells = %d, want 1", got)
	}
	if got := len(body["strongSells"].([]any)); got != 0 {
		t.Errorf("strongSells = %d, want 0", got)
	}
}
