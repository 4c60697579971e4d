// Package history generates synthetic daily OHLCV series for charting.
// Series are produced on demand, per request, and are independent of the
// live snapshot: nothing here is cached or retained.
package history

import (
	"math"
	"math/rand"
	"time"

	"cse-market-data/internal/model"
)

const (
	// DefaultDays is the series length when the caller does not specify one.
	DefaultDays = 30
	// MaxDays bounds a single request.
	MaxDays = 365

	priceFloor = 0.01
)

// Generate returns a days-long daily random walk ending today, anchored at
// the instrument's baseline price. days is clamped to [1, MaxDays]; a
// non-positive value falls back to DefaultDays.
func Generate(symbol string, days int, baselinePrice float64, rng *rand.Rand, now time.Time) []model.OHLCV {
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(now.UnixNano()))
	}

	series := make([]model.OHLCV, 0, days)
	price := baselinePrice

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)

		dailyChange := (rng.Float64() - 0.5) * 10
		open := clampPrice(price)
		price = clampPrice(price + dailyChange)
		high := round2(price + rng.Float64()*5)
		low := clampPrice(price - rng.Float64()*5)

		series = append(series, model.OHLCV{
			Date:   date.Format("2006-01-02"),
			Open:   round2(open),
			High:   high,
			Low:    round2(low),
			Close:  round2(price),
			Volume: int64(rng.Intn(200000)) + 50000,
		})
	}
	return series
}

func clampPrice(v float64) float64 {
	if v < priceFloor {
		return priceFloor
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
