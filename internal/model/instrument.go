package model

// Instrument is a listed security with its static reference attributes.
// The full instrument set is loaded once at startup and is immutable for
// the process lifetime.
type Instrument struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Sector            string  `json:"sector"`
	ISIN              string  `json:"isin"`
	OutstandingShares int64   `json:"outstandingShares"`
	BaselinePrice     float64 `json:"baselinePrice"`
	BaseVolume        int64   `json:"baseVolume"` // typical daily volume used by the tick generator
}

// Valid reports whether the instrument's reference data is usable for
// quote generation.
func (i *Instrument) Valid() bool {
	return i.Symbol != "" && i.OutstandingShares > 0 && i.BaselinePrice > 0
}
