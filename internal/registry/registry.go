// Package registry holds the static Casablanca Stock Exchange instrument
// set. It is loaded once at startup and read-only thereafter.
package registry

import (
	"sort"

	"cse-market-data/internal/model"
)

// cseInstruments is the full CSE listing used by the simulation. Baseline
// prices are the reference closes the generator anchors to; base volumes are
// typical daily volumes.
var cseInstruments = []model.Instrument{
	{Symbol: "ATW", Name: "Attijariwafa Bank", Sector: "Banking", ISIN: "MA0000011884", OutstandingShares: 200000000, BaselinePrice: 525.30, BaseVolume: 150000},
	{Symbol: "IAM", Name: "Itissalat Al-Maghrib", Sector: "Telecommunications", ISIN: "MA0000011298", OutstandingShares: 900000000, BaselinePrice: 142.80, BaseVolume: 120000},
	{Symbol: "COS", Name: "Cosumar", Sector: "Food & Beverages", ISIN: "MA0000012445", OutstandingShares: 30000000, BaselinePrice: 195.50, BaseVolume: 80000},
	{Symbol: "BCP", Name: "Banque Centrale Populaire", Sector: "Banking", ISIN: "MA0000011885", OutstandingShares: 180000000, BaselinePrice: 298.70, BaseVolume: 200000},
	{Symbol: "SNA", Name: "Société Nationale d'Autoroutes du Maroc", Sector: "Infrastructure", ISIN: "MA0000012454", OutstandingShares: 100000000, BaselinePrice: 89.60, BaseVolume: 60000},
	{Symbol: "LES", Name: "Lesieur Cristal", Sector: "Food & Beverages", ISIN: "MA0000012446", OutstandingShares: 25000000, BaselinePrice: 156.80, BaseVolume: 45000},
	{Symbol: "MNG", Name: "Managem", Sector: "Mining", ISIN: "MA0000011900", OutstandingShares: 40000000, BaselinePrice: 2890.00, BaseVolume: 25000},
	{Symbol: "TQM", Name: "Taqa Morocco", Sector: "Utilities", ISIN: "MA0000012447", OutstandingShares: 70000000, BaselinePrice: 1045.00, BaseVolume: 35000},
	{Symbol: "CDM", Name: "Credit du Maroc", Sector: "Banking", ISIN: "MA0000012455", OutstandingShares: 50000000, BaselinePrice: 210.50, BaseVolume: 55000},
	{Symbol: "EQD", Name: "EQDOM", Sector: "Financial Services", ISIN: "MA0000012456", OutstandingShares: 35000000, BaselinePrice: 185.30, BaseVolume: 40000},
	{Symbol: "FBR", Name: "Fenêtre Bati Résistant", Sector: "Manufacturing", ISIN: "MA0000012457", OutstandingShares: 20000000, BaselinePrice: 45.20, BaseVolume: 30000},
	{Symbol: "GAZ", Name: "Afriquia Gaz", Sector: "Energy", ISIN: "MA0000012458", OutstandingShares: 25000000, BaselinePrice: 1980.00, BaseVolume: 28000},
	{Symbol: "HPS", Name: "HPS", Sector: "Technology", ISIN: "MA0000012459", OutstandingShares: 60000000, BaselinePrice: 320.00, BaseVolume: 65000},
	{Symbol: "IAM.PA", Name: "IAM Preferred Shares", Sector: "Telecommunications", ISIN: "MA0000012460", OutstandingShares: 40000000, BaselinePrice: 135.00, BaseVolume: 48000},
	{Symbol: "INM", Name: "Intermarché Maroc", Sector: "Retail", ISIN: "MA0000012461", OutstandingShares: 28000000, BaselinePrice: 76.80, BaseVolume: 52000},
	{Symbol: "LAM", Name: "LafargeHolcim Maroc", Sector: "Construction", ISIN: "MA0000012462", OutstandingShares: 32000000, BaselinePrice: 210.00, BaseVolume: 38000},
	{Symbol: "MIC", Name: "Microdata", Sector: "Technology", ISIN: "MA0000012463", OutstandingShares: 75000000, BaselinePrice: 45.00, BaseVolume: 72000},
	{Symbol: "MUT", Name: "La Mutuelle Agricole", Sector: "Insurance", ISIN: "MA0000012464", OutstandingShares: 22000000, BaselinePrice: 1200.00, BaseVolume: 33000},
	{Symbol: "NEJ", Name: "Auto Nejma", Sector: "Automotive", ISIN: "MA0000012465", OutstandingShares: 18000000, BaselinePrice: 98.50, BaseVolume: 27000},
	{Symbol: "S2M", Name: "S2M", Sector: "Technology", ISIN: "MA0000012466", OutstandingShares: 55000000, BaselinePrice: 85.00, BaseVolume: 58000},
	{Symbol: "SMI", Name: "SMI", Sector: "Industrial", ISIN: "MA0000012467", OutstandingShares: 38000000, BaselinePrice: 150.00, BaseVolume: 42000},
	{Symbol: "TAI", Name: "TAI", Sector: "Aerospace", ISIN: "MA0000012468", OutstandingShares: 42000000, BaselinePrice: 320.00, BaseVolume: 36000},
	{Symbol: "WAA", Name: "Wafa Assurance", Sector: "Insurance", ISIN: "MA0000012469", OutstandingShares: 46000000, BaselinePrice: 420.00, BaseVolume: 49000},
}

// Registry is an immutable instrument lookup.
type Registry struct {
	instruments []model.Instrument
	bySymbol    map[string]model.Instrument
}

// Default returns a registry with the full CSE instrument set.
func Default() *Registry {
	return New(cseInstruments)
}

// New builds a registry from the given instruments, sorted by symbol.
func New(instruments []model.Instrument) *Registry {
	sorted := make([]model.Instrument, len(instruments))
	copy(sorted, instruments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	bySymbol := make(map[string]model.Instrument, len(sorted))
	for _, inst := range sorted {
		bySymbol[inst.Symbol] = inst
	}
	return &Registry{instruments: sorted, bySymbol: bySymbol}
}

// Get returns the instrument for symbol, or model.ErrNotFound.
func (r *Registry) Get(symbol string) (model.Instrument, error) {
	inst, ok := r.bySymbol[symbol]
	if !ok {
		return model.Instrument{}, model.ErrNotFound
	}
	return inst, nil
}

// All returns the instrument set in symbol order. The returned slice is a
// copy; callers may not mutate registry state through it.
func (r *Registry) All() []model.Instrument {
	out := make([]model.Instrument, len(r.instruments))
	copy(out, r.instruments)
	return out
}

// Symbols returns all symbols in ascending order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.instruments))
	for i, inst := range r.instruments {
		out[i] = inst.Symbol
	}
	return out
}

// Len returns the number of instruments.
func (r *Registry) Len() int { return len(r.instruments) }
