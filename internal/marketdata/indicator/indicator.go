// Package indicator fills the technical fields of a quote and classifies
// its trading signal.
//
// The feed is synthetic, so the indicators are too: RSI, MACD and the
// moving averages are drawn as bounded jitter around the current and
// baseline prices rather than computed over a retained price series. A
// real-feed replacement would use a 14-cycle lookback for RSI and true
// rolling windows for the averages.
package indicator

import (
	"math"
	"math/rand"
	"time"

	"cse-market-data/internal/model"
)

// Engine annotates quotes with synthetic technical fields. Not
// goroutine-safe; the refresh pipeline runs it in a single goroutine.
type Engine struct {
	rng *rand.Rand
}

// New creates an Engine. A nil rng gets a time-seeded source.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// Annotate returns q with its technical fields and trading signal filled in.
func (e *Engine) Annotate(q model.Quote, baselinePrice float64) model.Quote {
	// RSI in [30, 70].
	q.RSI = 50 + (e.rng.Float64()-0.5)*40

	// Price-proportional jitter bands, not true rolling averages.
	q.MovingAverage20 = round2(q.Price * (0.98 + e.rng.Float64()*0.04))
	q.MovingAverage50 = round2(q.Price * (0.96 + e.rng.Float64()*0.08))
	q.MovingAverage200 = round2(baselinePrice * (0.94 + e.rng.Float64()*0.12))

	// MACD in [-0.5, 0.5].
	q.MACD = e.rng.Float64() - 0.5

	// Bands at ±2% of the current price around the 20-period average.
	q.Bollinger = model.BollingerBands{
		Upper:  round2(q.MovingAverage20 + q.Price*0.02),
		Middle: q.MovingAverage20,
		Lower:  round2(q.MovingAverage20 - q.Price*0.02),
	}

	q.Signal = Classify(q.RSI, q.ChangePercent)
	return q
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
