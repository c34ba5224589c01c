package indicators

import (
	"context"
	"fmt"

	"cryptoSignalEngine/internal/domain"
)

// MACDConfig holds configuration for the MACD indicator.
type MACDConfig struct {
	FastPeriod   int // e.g., 12
	SlowPeriod   int // e.g., 26
	SignalPeriod int // e.g., 9
}

// MACDResult holds the MACD line and signal line at the latest candle plus
// the values one candle earlier, so callers can detect crossovers.
type MACDResult struct {
	MACD       float64
	Signal     float64
	Histogram  float64
	PrevMACD   float64
	PrevSignal float64
}

// BullishCrossover reports whether the MACD line crossed above the signal
// line at the latest candle.
func (r MACDResult) BullishCrossover() bool {
	return r.PrevMACD <= r.PrevSignal && r.MACD > r.Signal
}

// BearishCrossover reports whether the MACD line crossed below the signal
// line at the latest candle.
func (r MACDResult) BearishCrossover() bool {
	return r.PrevMACD >= r.PrevSignal && r.MACD < r.Signal
}

// MACD implements the Moving Average Convergence Divergence indicator.
// It does not satisfy the scalar Indicator interface since it produces a
// multi-value result per candle.
type MACD struct {
	config MACDConfig
}

// NewMACD creates a new MACD indicator instance.
func NewMACD(config MACDConfig) *MACD {
	return &MACD{config: config}
}

// Name returns the name of the indicator.
func (m *MACD) Name() string {
	return "MACD"
}

// RequiredDataPoints returns the minimum number of candles needed so that
// both the latest and the previous signal-line values exist.
func (m *MACD) RequiredDataPoints() int {
	return m.config.SlowPeriod + m.config.SignalPeriod
}

// Calculate computes the MACD line (fast EMA minus slow EMA) and its signal
// line (EMA of the MACD line) over the window.
func (m *MACD) Calculate(ctx context.Context, candles []*domain.Candle) (MACDResult, error) {
	required := m.RequiredDataPoints()
	if len(candles) < required {
		return MACDResult{}, fmt.Errorf("not enough data (%d) to calculate MACD(%d,%d,%d): need %d",
			len(candles), m.config.FastPeriod, m.config.SlowPeriod, m.config.SignalPeriod, required)
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	fast := emaSeries(closes, m.config.FastPeriod)
	slow := emaSeries(closes, m.config.SlowPeriod)

	// The MACD line exists from the first index where the slow EMA exists.
	// fast and slow are aligned to closes[FastPeriod-1:] and
	// closes[SlowPeriod-1:] respectively.
	offset := m.config.SlowPeriod - m.config.FastPeriod
	macdLine := make([]float64, len(slow))
	for i := range slow {
		macdLine[i] = fast[i+offset] - slow[i]
	}

	signal := emaSeries(macdLine, m.config.SignalPeriod)
	if len(signal) < 2 || len(macdLine) < 2 {
		return MACDResult{}, fmt.Errorf("MACD window too short for crossover detection")
	}

	res := MACDResult{
		MACD:       macdLine[len(macdLine)-1],
		Signal:     signal[len(signal)-1],
		PrevMACD:   macdLine[len(macdLine)-2],
		PrevSignal: signal[len(signal)-2],
	}
	res.Histogram = res.MACD - res.Signal
	return res, nil
}

// emaSeries computes an exponential moving average over values, seeded with
// the simple average of the first 'period' values. The result is aligned to
// values[period-1:]: out[k] is the EMA at values[period-1+k].
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	multiplier := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)

	ema := seed
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out = append(out, ema)
	}
	return out
}
