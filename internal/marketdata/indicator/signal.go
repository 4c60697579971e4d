package indicator

import "cse-market-data/internal/model"

// Classify maps (rsi, changePercent) to a trading signal. It is a pure
// function: the same inputs always yield the same signal.
//
// Rules are checked in order and the first match wins, so the strong
// signals shadow their weaker counterparts. The strong thresholds are
// inclusive (rsi of exactly 30 or 70 still qualifies).
func Classify(rsi, changePercent float64) model.Signal {
	switch {
	case rsi <= 30 && changePercent > 2:
		return model.SignalStrongBuy
	case rsi < 40 && changePercent > 0:
		return model.SignalBuy
	case rsi >= 70 && changePercent < -2:
		return model.SignalStrongSell
	case rsi > 60 && changePercent < 0:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
