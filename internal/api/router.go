// Package api exposes the REST surface over the snapshot cache. Handlers
// are thin: they validate the request, read the cache and encode JSON.
// Validation failures never reach the cache or the pipeline.
package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cse-market-data/internal/cache"
	"cse-market-data/internal/marketdata/history"
	"cse-market-data/internal/model"
	"cse-market-data/internal/registry"
)

const maxStockLimit = 100

// Deps wires the handlers to the rest of the process. History and Now are
// injectable for tests; nil selects the real implementations.
type Deps struct {
	Cache       *cache.Cache
	Registry    *registry.Registry
	MarketOpen  func() bool
	ClientCount func() int
	Env         string
	StartedAt   time.Time

	History func(symbol string, days int, baselinePrice float64) []model.OHLCV
	Now     func() time.Time
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// RegisterRoutes registers all REST routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.History == nil {
		d.History = func(symbol string, days int, baselinePrice float64) []model.OHLCV {
			return history.Generate(symbol, days, baselinePrice, rand.New(rand.NewSource(d.Now().UnixNano())), d.Now())
		}
	}
	if d.MarketOpen == nil {
		d.MarketOpen = func() bool { return false }
	}
	if d.ClientCount == nil {
		d.ClientCount = func() int { return 0 }
	}

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		snap := d.Cache.Current()
		lastUpdate := ""
		if snap != nil {
			lastUpdate = snap.GeneratedAt.Format(time.RFC3339)
		}
		var lastErr string
		if err := d.Cache.LastError(); err != nil {
			lastErr = err.Error()
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "healthy",
			"uptime":           d.Now().Sub(d.StartedAt).Round(time.Second).String(),
			"timestamp":        d.Now().Format(time.RFC3339),
			"lastDataUpdate":   lastUpdate,
			"cacheState":       d.Cache.State().String(),
			"lastError":        lastErr,
			"marketOpen":       d.MarketOpen(),
			"connectedClients": d.ClientCount(),
			"environment":      d.Env,
		})
	})

	mux.HandleFunc("/api/stocks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := 0
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxStockLimit {
				writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
				return
			}
			limit = n
		}

		snap, err := d.Cache.Snapshot()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "market data unavailable")
			return
		}

		stocks := snap.Quotes
		if sector := q.Get("sector"); sector != "" {
			stocks = filterQuotes(stocks, func(s model.Quote) bool {
				return containsFold(s.Sector, sector)
			})
		}
		if symbol := q.Get("symbol"); symbol != "" {
			stocks = filterQuotes(stocks, func(s model.Quote) bool {
				return containsFold(s.Symbol, symbol)
			})
		}
		if limit > 0 && len(stocks) > limit {
			stocks = stocks[:limit]
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"stocks":      stocks,
			"totalStocks": len(stocks),
			"lastUpdate":  snap.GeneratedAt.Format(time.RFC3339),
			"marketOpen":  d.MarketOpen(),
		})
	})

	mux.HandleFunc("/api/stocks/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
		symbol, tail, _ := strings.Cut(rest, "/")
		symbol = strings.ToUpper(symbol)
		if symbol == "" {
			writeError(w, http.StatusNotFound, "endpoint not found")
			return
		}
		switch tail {
		case "":
			d.handleStock(w, symbol)
		case "history":
			d.handleHistory(w, r, symbol)
		default:
			writeError(w, http.StatusNotFound, "endpoint not found")
		}
	})

	mux.HandleFunc("/api/market-summary", func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Cache.Snapshot()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "market data unavailable")
			return
		}
		status := "CLOSED"
		if d.MarketOpen() {
			status = "OPEN"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"marketSummary": snap.MarketSummary,
			"masi":          snap.Index,
			"marketStatus":  status,
			"lastUpdate":    snap.GeneratedAt.Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/sectors", func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Cache.Snapshot()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "market data unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sectors":      snap.Sectors,
			"totalSectors": len(snap.Sectors),
			"lastUpdate":   snap.GeneratedAt.Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/masi", func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Cache.Snapshot()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "market data unavailable")
			return
		}
		writeJSON(w, http.StatusOK, snap.Index)
	})

	mux.HandleFunc("/api/screener", d.handleScreener)

	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, "search query required")
			return
		}
		snap, err := d.Cache.Snapshot()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "market data unavailable")
			return
		}
		results := filterQuotes(snap.Quotes, func(s model.Quote) bool {
			return containsFold(s.Symbol, query) ||
				containsFold(s.Name, query) ||
				containsFold(s.Sector, query)
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"query":        query,
			"results":      results,
			"totalResults": len(results),
		})
	})

	mux.HandleFunc("/api/signals", func(w http.ResponseWriter, r *http.Request) {
		snap, err := d.Cache.Snapshot()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "market data unavailable")
			return
		}
		bySignal := func(sig model.Signal) []model.Quote {
			return filterQuotes(snap.Quotes, func(s model.Quote) bool { return s.Signal == sig })
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"strongBuys":  bySignal(model.SignalStrongBuy),
			"buys":        bySignal(model.SignalBuy),
			"sells":       bySignal(model.SignalSell),
			"strongSells": bySignal(model.SignalStrongSell),
			"totalStocks": len(snap.Quotes),
			"lastUpdate":  snap.GeneratedAt.Format(time.RFC3339),
		})
	})
}

func (d Deps) handleStock(w http.ResponseWriter, symbol string) {
	q, err := d.Cache.Quote(symbol)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":            "stock not found",
				"availableSymbols": d.Registry.Symbols(),
			})
			return
		}
		writeError(w, http.StatusServiceUnavailable, "market data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (d Deps) handleHistory(w http.ResponseWriter, r *http.Request, symbol string) {
	days := history.DefaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > history.MaxDays {
			writeError(w, http.StatusBadRequest, "days must be an integer between 1 and 365")
			return
		}
		days = n
	}
	inst, err := d.Registry.Get(symbol)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":            "stock not found",
			"availableSymbols": d.Registry.Symbols(),
		})
		return
	}
	series := d.History(symbol, days, inst.BaselinePrice)
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":  symbol,
		"history": series,
		"period":  strconv.Itoa(days) + " days",
	})
}

func filterQuotes(quotes []model.Quote, keep func(model.Quote) bool) []model.Quote {
	out := make([]model.Quote, 0, len(quotes))
	for _, q := range quotes {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

