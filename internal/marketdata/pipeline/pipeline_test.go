package pipeline

import (
	"math/rand"
	"testing"
	"time"

	"cse-market-data/internal/marketdata/indicator"
	"cse-market-data/internal/marketdata/tickgen"
	"cse-market-data/internal/registry"
)

func newBuilder(seed int64) *Builder {
	return New(
		registry.Default(),
		tickgen.New(rand.New(rand.NewSource(seed))),
		indicator.New(rand.New(rand.NewSource(seed+1))),
	)
}

func TestBuildCoversRegistry(t *testing.T) {
	b := newBuilder(1)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	snap, err := b.Build(now, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got, want := len(snap.Quotes), registry.Default().Len(); got != want {
		t.Fatalf("got %d quotes, want %d", got, want)
	}
	if snap.MarketSummary.TotalStocks != len(snap.Quotes) {
		t.Errorf("totalStocks %d != %d quotes", snap.MarketSummary.TotalStocks, len(snap.Quotes))
	}
	if !snap.GeneratedAt.Equal(now) {
		t.Errorf("generatedAt = %v, want %v", snap.GeneratedAt, now)
	}
	for _, q := range snap.Quotes {
		if q.Price <= 0 {
			t.Fatalf("%s: non-positive price %v", q.Symbol, q.Price)
		}
		if q.Signal == "" {
			t.Fatalf("%s: missing signal", q.Symbol)
		}
	}
}

func TestBuildEmptyRegistry(t *testing.T) {
	b := New(registry.New(nil), tickgen.New(rand.New(rand.NewSource(1))), indicator.New(rand.New(rand.NewSource(2))))
	if _, err := b.Build(time.Now(), true); err == nil {
		t.Fatal("expected error for empty registry")
	}
}

func TestBuildAggregatesSectors(t *testing.T) {
	b := newBuilder(7)
	snap, err := b.Build(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(snap.Sectors) == 0 {
		t.Fatal("no sector summaries")
	}
	total := 0
	for _, s := range snap.Sectors {
		total += s.StockCount
	}
	if total != len(snap.Quotes) {
		t.Errorf("sector stock counts sum to %d, want %d", total, len(snap.Quotes))
	}
	if snap.Index.Name != "MASI" {
		t.Errorf("index name = %q", snap.Index.Name)
	}
}
