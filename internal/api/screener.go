package api

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"cse-market-data/internal/model"
)

// screenerQuery holds the parsed and validated screener parameters.
// Pointers distinguish "absent" from zero.
type screenerQuery struct {
	minVolume    *float64
	maxVolume    *float64
	minPrice     *float64
	maxPrice     *float64
	minMarketCap *float64
	maxMarketCap *float64
	sector       string
	sortBy       string
	sortOrder    string
}

var screenerSortKeys = map[string]bool{
	"symbol":        true,
	"price":         true,
	"volume":        true,
	"marketCap":     true,
	"change":        true,
	"changePercent": true,
}

func parseScreenerQuery(values url.Values) (screenerQuery, string) {
	q := screenerQuery{
		sector:    values.Get("sector"),
		sortBy:    values.Get("sortBy"),
		sortOrder: values.Get("sortOrder"),
	}
	if q.sortBy == "" {
		q.sortBy = "symbol"
	}
	if q.sortOrder == "" {
		q.sortOrder = "asc"
	}
	if !screenerSortKeys[q.sortBy] {
		return q, "sortBy must be one of symbol, price, volume, marketCap, change, changePercent"
	}
	if q.sortOrder != "asc" && q.sortOrder != "desc" {
		return q, "sortOrder must be asc or desc"
	}

	bounds := []struct {
		key  string
		dest **float64
	}{
		{"minVolume", &q.minVolume},
		{"maxVolume", &q.maxVolume},
		{"minPrice", &q.minPrice},
		{"maxPrice", &q.maxPrice},
		{"minMarketCap", &q.minMarketCap},
		{"maxMarketCap", &q.maxMarketCap},
	}
	for _, b := range bounds {
		v := values.Get(b.key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return q, b.key + " must be a non-negative number"
		}
		val := f
		*b.dest = &val
	}

	if q.minVolume != nil && q.maxVolume != nil && *q.minVolume > *q.maxVolume {
		return q, "minVolume cannot be greater than maxVolume"
	}
	if q.minPrice != nil && q.maxPrice != nil && *q.minPrice > *q.maxPrice {
		return q, "minPrice cannot be greater than maxPrice"
	}
	if q.minMarketCap != nil && q.maxMarketCap != nil && *q.minMarketCap > *q.maxMarketCap {
		return q, "minMarketCap cannot be greater than maxMarketCap"
	}
	return q, ""
}

func (q screenerQuery) match(s model.Quote) bool {
	if q.minVolume != nil && float64(s.Volume) < *q.minVolume {
		return false
	}
	if q.maxVolume != nil && float64(s.Volume) > *q.maxVolume {
		return false
	}
	if q.minPrice != nil && s.Price < *q.minPrice {
		return false
	}
	if q.maxPrice != nil && s.Price > *q.maxPrice {
		return false
	}
	if q.minMarketCap != nil && s.MarketCap < *q.minMarketCap {
		return false
	}
	if q.maxMarketCap != nil && s.MarketCap > *q.maxMarketCap {
		return false
	}
	if q.sector != "" && !strings.EqualFold(s.Sector, q.sector) {
		return false
	}
	return true
}

func (q screenerQuery) sortQuotes(stocks []model.Quote) {
	less := func(a, b model.Quote) bool {
		switch q.sortBy {
		case "price":
			return a.Price < b.Price
		case "volume":
			return a.Volume < b.Volume
		case "marketCap":
			return a.MarketCap < b.MarketCap
		case "change":
			return a.Change < b.Change
		case "changePercent":
			return a.ChangePercent < b.ChangePercent
		default:
			return a.Symbol < b.Symbol
		}
	}
	sort.Slice(stocks, func(i, j int) bool {
		if q.sortOrder == "desc" {
			return less(stocks[j], stocks[i])
		}
		return less(stocks[i], stocks[j])
	})
}

// handleScreener filters and sorts the current quote set. Range validation
// errors are rejected with 400 before the cache is touched.
func (d Deps) handleScreener(w http.ResponseWriter, r *http.Request) {
	q, errMsg := parseScreenerQuery(r.URL.Query())
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	snap, err := d.Cache.Snapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "market data unavailable")
		return
	}

	stocks := filterQuotes(snap.Quotes, q.match)
	q.sortQuotes(stocks)

	writeJSON(w, http.StatusOK, map[string]any{
		"stocks":       stocks,
		"totalResults": len(stocks),
		"sortBy":       q.sortBy,
		"sortOrder":    q.sortOrder,
		"lastUpdate":   snap.GeneratedAt.Format(time.RFC3339),
	})
}
