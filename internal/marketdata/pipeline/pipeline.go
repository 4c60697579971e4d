// Package pipeline builds complete market snapshots: one generated quote
// per registered instrument, indicator annotation, then market-wide
// aggregation. A single Build call is one generation cycle.
package pipeline

import (
	"fmt"
	"time"

	"cse-market-data/internal/marketdata/agg"
	"cse-market-data/internal/marketdata/indicator"
	"cse-market-data/internal/marketdata/tickgen"
	"cse-market-data/internal/model"
	"cse-market-data/internal/registry"
)

type Builder struct {
	reg *registry.Registry
	gen *tickgen.Generator
	ind *indicator.Engine
}

func New(reg *registry.Registry, gen *tickgen.Generator, ind *indicator.Engine) *Builder {
	return &Builder{reg: reg, gen: gen, ind: ind}
}

// Build generates a snapshot for every instrument in the registry.
// Market sentiment is sampled once and shared across the cycle.
func (b *Builder) Build(now time.Time, marketOpen bool) (*model.Snapshot, error) {
	instruments := b.reg.All()
	if len(instruments) == 0 {
		return nil, fmt.Errorf("pipeline: empty instrument registry")
	}

	sentiment := b.gen.Sentiment()
	quotes := make([]model.Quote, 0, len(instruments))
	for _, inst := range instruments {
		q := b.gen.Generate(inst, sentiment, marketOpen, now)
		q = b.ind.Annotate(q, inst.BaselinePrice)
		quotes = append(quotes, q)
	}

	summary, sectors, index := agg.Aggregate(quotes)
	return &model.Snapshot{
		Quotes:        quotes,
		MarketSummary: summary,
		Sectors:       sectors,
		Index:         index,
		GeneratedAt:   now,
	}, nil
}
