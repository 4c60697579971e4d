// Package agg folds a cycle's quote set into the market-wide summary, the
// per-sector rollups and the composite index. Aggregation is a pure
// function of the quote slice: it never mutates previous results and the
// empty set yields zeroed aggregates, not an error.
package agg

import (
	"math"
	"sort"

	"cse-market-data/internal/model"
)

const (
	// IndexName is the CSE composite index identifier.
	IndexName = "MASI"
	// IndexBaseline anchors the market-cap-weighted index value.
	IndexBaseline = 12500.0
	// topN is the size of the top gainers/losers/most-active lists.
	topN = 5
)

// Aggregate computes the full set of derived aggregates for one cycle.
func Aggregate(quotes []model.Quote) (model.MarketSummary, []model.SectorSummary, model.IndexValue) {
	return marketSummary(quotes), sectorSummaries(quotes), indexValue(quotes)
}

func marketSummary(quotes []model.Quote) model.MarketSummary {
	s := model.MarketSummary{
		TotalStocks: len(quotes),
		TopGainers:  []model.Quote{},
		TopLosers:   []model.Quote{},
		MostActive:  []model.Quote{},
	}
	if len(quotes) == 0 {
		return s
	}

	var priceSum float64
	for _, q := range quotes {
		s.TotalMarketCap += q.MarketCap
		s.TotalVolume += q.Volume
		priceSum += q.Price

		// Exhaustive, disjoint partition by sign of the absolute change.
		switch {
		case q.Change > 0:
			s.Gainers++
		case q.Change < 0:
			s.Losers++
		default:
			s.Unchanged++
		}
	}
	s.AveragePrice = round2(priceSum / float64(len(quotes)))

	gainers := filter(quotes, func(q model.Quote) bool { return q.ChangePercent > 0 })
	sortByChangeDesc(gainers)
	s.TopGainers = head(gainers, topN)

	losers := filter(quotes, func(q model.Quote) bool { return q.ChangePercent < 0 })
	sort.Slice(losers, func(i, j int) bool {
		if losers[i].ChangePercent != losers[j].ChangePercent {
			return losers[i].ChangePercent < losers[j].ChangePercent
		}
		return losers[i].Symbol < losers[j].Symbol
	})
	s.TopLosers = head(losers, topN)

	active := make([]model.Quote, len(quotes))
	copy(active, quotes)
	sort.Slice(active, func(i, j int) bool {
		if active[i].Volume != active[j].Volume {
			return active[i].Volume > active[j].Volume
		}
		return active[i].Symbol < active[j].Symbol
	})
	s.MostActive = head(active, topN)

	return s
}

// sectorSummaries groups by the sector field on the quotes themselves, not
// the static registry: a sector with no quotes this cycle is simply absent.
func sectorSummaries(quotes []model.Quote) []model.SectorSummary {
	type acc struct {
		summary  model.SectorSummary
		cpSum    float64
		topCP    float64
		topStock string
	}
	bySector := make(map[string]*acc)

	for _, q := range quotes {
		a, ok := bySector[q.Sector]
		if !ok {
			a = &acc{summary: model.SectorSummary{Name: q.Sector}, topCP: math.Inf(-1)}
			bySector[q.Sector] = a
		}
		a.summary.StockCount++
		a.summary.TotalMarketCap += q.MarketCap
		a.summary.TotalVolume += q.Volume
		a.cpSum += q.ChangePercent

		if q.ChangePercent > a.topCP || (q.ChangePercent == a.topCP && q.Symbol < a.topStock) {
			a.topCP = q.ChangePercent
			a.topStock = q.Symbol
		}
	}

	out := make([]model.SectorSummary, 0, len(bySector))
	for _, a := range bySector {
		a.summary.AverageChangePercent = round2(a.cpSum / float64(a.summary.StockCount))
		a.summary.TopStock = a.topStock
		out = append(out, a.summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// indexValue computes the market-cap-weighted composite:
//
//	value = baseline * (1 + sum(changePercent_i * weight_i) / 100)
//
// with weight_i = marketCap_i / totalMarketCap. A zero total market cap
// degrades to the baseline with zero change instead of dividing by zero.
func indexValue(quotes []model.Quote) model.IndexValue {
	idx := model.IndexValue{Name: IndexName, Value: IndexBaseline}

	var totalCap, weightedCP float64
	for _, q := range quotes {
		totalCap += q.MarketCap
		idx.Volume += q.Volume
	}
	if totalCap == 0 {
		return idx
	}

	for _, q := range quotes {
		weightedCP += q.ChangePercent * (q.MarketCap / totalCap)
	}

	idx.Value = round2(IndexBaseline * (1 + weightedCP/100))
	idx.Change = round2(idx.Value - IndexBaseline)
	idx.ChangePercent = round2(weightedCP)
	return idx
}

func filter(quotes []model.Quote, keep func(model.Quote) bool) []model.Quote {
	out := make([]model.Quote, 0, len(quotes))
	for _, q := range quotes {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func sortByChangeDesc(quotes []model.Quote) {
	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].ChangePercent != quotes[j].ChangePercent {
			return quotes[i].ChangePercent > quotes[j].ChangePercent
		}
		return quotes[i].Symbol < quotes[j].Symbol
	})
}

func head(quotes []model.Quote, n int) []model.Quote {
	if len(quotes) > n {
		quotes = quotes[:n]
	}
	return quotes
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
