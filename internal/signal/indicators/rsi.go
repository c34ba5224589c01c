package indicators

import (
	"context"
	"fmt"

	"cryptoSignalEngine/internal/domain"
)

// RSIConfig holds configuration for the RSI indicator.
type RSIConfig struct {
	IndicatorConfig
	Overbought float64
	Oversold   float64
}

// RSI implements the Relative Strength Index indicator.
type RSI struct {
	BaseIndicator
	config RSIConfig
}

// NewRSI creates a new RSI indicator instance.
func NewRSI(config RSIConfig) *RSI {
	return &RSI{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() string {
	return "RSI"
}

// RequiredDataPoints returns the minimum number of candles needed; RSI looks
// one candle further back than its period for the first price change.
func (r *RSI) RequiredDataPoints() int {
	return r.Config.Period + 1
}

// Calculate computes the RSI value using Wilder's smoothing method.
func (r *RSI) Calculate(ctx context.Context, candles []*domain.Candle) (float64, error) {
	period := r.Config.Period
	if len(candles) <= period {
		return 0, fmt.Errorf("not enough data (%d) to calculate RSI for period %d", len(candles), period)
	}

	// Price changes between consecutive closes
	changes := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		changes = append(changes, candles[i].Close-candles[i-1].Close)
	}

	// Seed with the simple average of the first 'period' gains/losses
	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		if changes[i] > 0 {
			avgGain += changes[i]
		} else {
			avgLoss -= changes[i]
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder's smoothing over the remaining changes
	for i := period; i < len(changes); i++ {
		if changes[i] > 0 {
			avgGain = (avgGain*float64(period-1) + changes[i]) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - changes[i]) / float64(period)
		}
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil // flat series is neutral
		}
		return 100, nil // only gains
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))

	if rsi > 100 {
		rsi = 100
	} else if rsi < 0 {
		rsi = 0
	}

	return rsi, nil
}

// IsOverbought checks if the RSI value indicates an overbought condition.
func (r *RSI) IsOverbought(value float64) bool {
	return value >= r.config.Overbought
}

// IsOversold checks if the RSI value indicates an oversold condition.
func (r *RSI) IsOversold(value float64) bool {
	return value <= r.config.Oversold
}
