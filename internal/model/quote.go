package model

import "time"

// Signal is a discrete trading recommendation derived from a quote's
// technical fields.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// BollingerBands holds the three band values around the 20-period average.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Quote is one instrument's derived market data for a single refresh cycle.
// Price is always > 0 (a floor is applied during generation) and MarketCap
// is always >= 0.
//
// DayHigh/DayLow and OpenPrice are cosmetic jitter around the current and
// baseline price respectively, not derived from an intraday path; no
// ordering between DayLow, Price and DayHigh is guaranteed.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	ISIN          string  `json:"isin"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"` // price - previousClose
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	MarketCap     float64 `json:"marketCap"` // price * outstandingShares
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	OpenPrice     float64 `json:"openPrice"`
	PreviousClose float64 `json:"previousClose"`

	// Technical fields, synthetic (see internal/marketdata/indicator).
	RSI              float64        `json:"rsi"`
	MovingAverage20  float64        `json:"movingAverage20"`
	MovingAverage50  float64        `json:"movingAverage50"`
	MovingAverage200 float64        `json:"movingAverage200"`
	MACD             float64        `json:"macd"`
	Bollinger        BollingerBands `json:"bollingerBands"`
	Signal           Signal         `json:"signal"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// OHLCV is one day of a synthetic historical price series. It is produced
// on demand for charting and is independent of the live snapshot.
type OHLCV struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
