package tickgen

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"cse-market-data/internal/model"
)

var testInstrument = model.Instrument{
	Symbol: "ATW", Name: "Attijariwafa Bank", Sector: "Banking", ISIN: "MA0000011884",
	OutstandingShares: 200000000, BaselinePrice: 525.30, BaseVolume: 150000,
}

func TestGeneratePriceAlwaysPositive(t *testing.T) {
	g := New(rand.New(rand.NewSource(1)))
	now := time.Now().UTC()

	// A near-worthless instrument in the most volatile sector is the
	// worst case for the price floor.
	penny := model.Instrument{
		Symbol: "PNY", Sector: "Technology",
		OutstandingShares: 1000, BaselinePrice: 0.02, BaseVolume: 100,
	}

	for i := 0; i < 5000; i++ {
		sentiment := g.Sentiment()
		for _, inst := range []model.Instrument{testInstrument, penny} {
			q := g.Generate(inst, sentiment, true, now)
			if q.Price <= 0 {
				t.Fatalf("cycle %d: price must be > 0, got %v for %s", i, q.Price, q.Symbol)
			}
			if q.MarketCap < 0 {
				t.Fatalf("cycle %d: market cap must be >= 0, got %v for %s", i, q.MarketCap, q.Symbol)
			}
			if q.Volume <= 0 {
				t.Fatalf("cycle %d: volume must be positive, got %d for %s", i, q.Volume, q.Symbol)
			}
		}
	}
}

func TestGenerateChangeConsistency(t *testing.T) {
	g := New(rand.New(rand.NewSource(7)))
	now := time.Now().UTC()

	for i := 0; i < 1000; i++ {
		q := g.Generate(testInstrument, 1.0, true, now)

		if got := q.Price - q.PreviousClose; math.Abs(got-q.Change) > 0.005 {
			t.Fatalf("change mismatch: price-prevClose=%v change=%v", got, q.Change)
		}
		if q.PreviousClose != testInstrument.BaselinePrice {
			t.Fatalf("previousClose: got %v, want baseline %v", q.PreviousClose, testInstrument.BaselinePrice)
		}
		if q.MarketCap != q.Price*float64(testInstrument.OutstandingShares) {
			t.Fatalf("marketCap: got %v, want price*shares", q.MarketCap)
		}
	}
}

func TestGenerateChangeBoundedBySectorVolatility(t *testing.T) {
	g := New(rand.New(rand.NewSource(42)))
	now := time.Now().UTC()

	// Max sentiment is 1.2, Banking band is 3.0: |changePercent| < 3.6
	// (plus rounding slack).
	const bound = 3.0*1.2 + 0.01
	for i := 0; i < 2000; i++ {
		q := g.Generate(testInstrument, 1.2, true, now)
		if math.Abs(q.ChangePercent) > bound {
			t.Fatalf("changePercent %v exceeds volatility bound %v", q.ChangePercent, bound)
		}
	}
}

func TestVolatilityFallback(t *testing.T) {
	if v := Volatility("Banking"); v != 3.0 {
		t.Errorf("Banking volatility: got %v, want 3.0", v)
	}
	if v := Volatility("Shipping"); v != defaultVolatility {
		t.Errorf("unknown sector volatility: got %v, want default %v", v, defaultVolatility)
	}
}

func TestGenerateUnmappedInstrumentDefaults(t *testing.T) {
	g := New(rand.New(rand.NewSource(3)))
	unmapped := model.Instrument{
		Symbol: "NEW", Sector: "Shipping",
		OutstandingShares: 1000000, BaselinePrice: 100,
		// BaseVolume deliberately zero: generator must fall back.
	}

	q := g.Generate(unmapped, 1.0, false, time.Now().UTC())
	if q.Volume <= 0 {
		t.Errorf("unmapped instrument must still get a volume, got %d", q.Volume)
	}
}

func TestVolumeSessionFactor(t *testing.T) {
	now := time.Now().UTC()

	// Same seed for both sessions: the only difference is the open factor.
	open := New(rand.New(rand.NewSource(99))).Generate(testInstrument, 1.0, true, now)
	closed := New(rand.New(rand.NewSource(99))).Generate(testInstrument, 1.0, false, now)

	if open.Volume <= closed.Volume {
		t.Errorf("open-market volume (%d) should exceed closed-market volume (%d)", open.Volume, closed.Volume)
	}
}

func TestSentimentBounds(t *testing.T) {
	g := New(rand.New(rand.NewSource(5)))
	for i := 0; i < 10000; i++ {
		s := g.Sentiment()
		if s < 0.8 || s >= 1.2 {
			t.Fatalf("sentiment %v outside [0.8, 1.2)", s)
		}
	}
}
