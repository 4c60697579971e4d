package model

import (
	"encoding/json"
	"time"
)

// MarketSummary is the market-wide rollup for one refresh cycle.
// Gainers + Losers + Unchanged always equals TotalStocks: the partition by
// sign of Change is exhaustive and disjoint.
type MarketSummary struct {
	TotalStocks    int     `json:"totalStocks"`
	TotalMarketCap float64 `json:"totalMarketCap"`
	TotalVolume    int64   `json:"totalVolume"`
	AveragePrice   float64 `json:"averagePrice"`
	Gainers        int     `json:"gainers"`
	Losers         int     `json:"losers"`
	Unchanged      int     `json:"unchanged"`
	TopGainers     []Quote `json:"topGainers"`
	TopLosers      []Quote `json:"topLosers"`
	MostActive     []Quote `json:"mostActive"`
}

// SectorSummary is the per-sector rollup for one refresh cycle. Only sectors
// present in the current quote set appear; a sector with zero quotes is
// absent, never zero-filled.
type SectorSummary struct {
	Name                 string  `json:"name"`
	StockCount           int     `json:"stockCount"`
	TotalMarketCap       float64 `json:"totalMarketCap"`
	TotalVolume          int64   `json:"totalVolume"`
	AverageChangePercent float64 `json:"averageChangePercent"`
	TopStock             string  `json:"topStock"` // highest changePercent in the sector
}

// IndexValue is the market-cap-weighted composite index for one cycle.
type IndexValue struct {
	Name          string  `json:"index"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

// Snapshot is the complete derived market data set for one refresh cycle.
// It is built whole, published by pointer swap and never mutated afterwards,
// so readers always observe internally consistent fields.
type Snapshot struct {
	Quotes        []Quote         `json:"quotes"`
	MarketSummary MarketSummary   `json:"marketSummary"`
	Sectors       []SectorSummary `json:"sectors"`
	Index         IndexValue      `json:"index"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

// Quote returns the quote for symbol, or false if the snapshot does not
// contain it.
func (s *Snapshot) Quote(symbol string) (Quote, bool) {
	for i := range s.Quotes {
		if s.Quotes[i].Symbol == symbol {
			return s.Quotes[i], true
		}
	}
	return Quote{}, false
}

// Symbols returns the symbols present in the snapshot, in quote order.
func (s *Snapshot) Symbols() []string {
	out := make([]string, len(s.Quotes))
	for i := range s.Quotes {
		out[i] = s.Quotes[i].Symbol
	}
	return out
}

// JSON returns the JSON-encoded snapshot (ignoring errors for hot-path usage).
func (s *Snapshot) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
