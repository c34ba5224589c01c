package domain

// Direction classifies the latest candle of an evaluated window.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// IndicatorSnapshot holds the derived values computed for the latest candle.
// It is recomputed on every evaluation and never persisted.
type IndicatorSnapshot struct {
	RSI            float64 // 0-100
	MACD           float64 // MACD line at the latest candle
	MACDSignal     float64 // signal line at the latest candle
	MACDHistogram  float64 // MACD - signal
	PrevMACD       float64 // MACD line one candle earlier (for crossover detection)
	PrevMACDSignal float64 // signal line one candle earlier
	ATR            float64 // absolute average true range
	ATRFraction    float64 // ATR relative to the latest close
	HigherTFRSI    float64 // RSI on the aligned higher-timeframe window
}

// Signal is the engine output for the latest candle of a window.
// Leverage and Stoploss only carry meaning for directional signals; a Hold
// leaves both at zero since no position is opened on it.
type Signal struct {
	Direction Direction
	Leverage  float64           // multiplier within the configured bounds
	Stoploss  float64           // negative fractional return (e.g. -0.02 = 2% loss tolerance)
	Snapshot  IndicatorSnapshot // diagnostic values behind the decision
}

// IsDirectional reports whether the signal proposes entering a position.
func (s Signal) IsDirectional() bool {
	return s.Direction == Buy || s.Direction == Sell
}

// HoldSignal returns the fail-safe default emitted whenever the window is too
// short, malformed, or no entry condition survives the filters.
func HoldSignal() Signal {
	return Signal{Direction: Hold}
}
