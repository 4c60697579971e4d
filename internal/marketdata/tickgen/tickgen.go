// Package tickgen produces one synthetic price/volume observation per
// instrument per refresh cycle. Generation is pure computation over static
// reference data: instruments with an unmapped sector fall back to a default
// volatility band rather than failing.
package tickgen

import (
	"math"
	"math/rand"
	"time"

	"cse-market-data/internal/model"
)

// priceFloor is the minimum quote price. Prices are never allowed <= 0.
const priceFloor = 0.01

// sectorVolatility maps a sector to its percentage volatility band.
var sectorVolatility = map[string]float64{
	"Banking":            3.0,
	"Telecommunications": 2.5,
	"Food & Beverages":   2.0,
	"Infrastructure":     2.8,
	"Mining":             4.5,
	"Utilities":          2.2,
	"Technology":         5.0,
	"Insurance":          3.2,
	"Retail":             3.5,
	"Automotive":         4.0,
	"Energy":             4.2,
	"Financial Services": 3.3,
	"Manufacturing":      3.0,
	"Construction":       3.2,
	"Industrial":         3.1,
	"Aerospace":          4.1,
}

// defaultVolatility applies to sectors without an explicit band.
const defaultVolatility = 3.0

// defaultBaseVolume applies to instruments without a configured base volume.
const defaultBaseVolume = 50000

// Volatility returns the percentage volatility band for a sector.
func Volatility(sector string) float64 {
	if v, ok := sectorVolatility[sector]; ok {
		return v
	}
	return defaultVolatility
}

// Generator produces synthetic quotes. Not goroutine-safe: the refresh
// pipeline runs generation in a single goroutine per cycle.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator. A nil rng gets a time-seeded source.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Sentiment samples the shared market mood multiplier for one cycle,
// uniform in [0.8, 1.2). It applies to every instrument in that cycle.
func (g *Generator) Sentiment() float64 {
	return 0.8 + g.rng.Float64()*0.4
}

// Generate produces the price/volume fields of a quote for one cycle.
// Indicator fields are filled separately by the indicator engine.
//
// Direction is an unbiased coin flip per instrument; magnitude is
// uniform(0, sectorVolatility) scaled by the cycle-wide sentiment.
func (g *Generator) Generate(inst model.Instrument, sentiment float64, marketOpen bool, now time.Time) model.Quote {
	base := inst.BaselinePrice

	direction := 1.0
	if g.rng.Float64() < 0.5 {
		direction = -1.0
	}
	changePercent := g.rng.Float64() * Volatility(inst.Sector) * direction * sentiment

	price := round2(base + base*changePercent/100)
	if price < priceFloor {
		price = priceFloor
	}
	// Re-derive change from the floored, rounded price so change and
	// changePercent stay consistent with each other.
	change := round2(price - base)
	changePercent = round2(change / base * 100)

	marketCap := price * float64(inst.OutstandingShares)

	// Day high/low jitter ±2% around the new price and open jitters ±0.5%
	// around the baseline. These are cosmetic bounds, not an intraday path:
	// dayLow <= price <= dayHigh is not guaranteed.
	dayHigh := round2(price * (1 + g.rng.Float64()*0.02))
	dayLow := round2(price * (1 - g.rng.Float64()*0.02))
	openPrice := round2(base * (1 + (g.rng.Float64()-0.5)*0.01))

	return model.Quote{
		Symbol:        inst.Symbol,
		Name:          inst.Name,
		Sector:        inst.Sector,
		ISIN:          inst.ISIN,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        g.volume(inst, changePercent, marketOpen),
		MarketCap:     marketCap,
		DayHigh:       dayHigh,
		DayLow:        dayLow,
		OpenPrice:     openPrice,
		PreviousClose: base,
		GeneratedAt:   now,
	}
}

// volume scales the instrument's base volume by movement magnitude, a random
// factor and the session state (busier when the market is open).
func (g *Generator) volume(inst model.Instrument, changePercent float64, marketOpen bool) int64 {
	baseVolume := inst.BaseVolume
	if baseVolume <= 0 {
		baseVolume = defaultBaseVolume
	}

	sessionFactor := 0.8
	if marketOpen {
		sessionFactor = 1.2
	}

	v := float64(baseVolume) *
		(1 + math.Abs(changePercent)*0.1) *
		(0.8 + g.rng.Float64()*0.4) *
		sessionFactor
	return int64(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
