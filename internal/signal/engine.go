package signal

import (
	"context"
	"fmt"
	"strings"

	"cryptoSignalEngine/internal/domain"
	"cryptoSignalEngine/internal/ports"
	"cryptoSignalEngine/internal/risk"
	"cryptoSignalEngine/internal/signal/indicators"
)

// Config holds all tunable parameters of the signal engine. It is passed by
// value and never mutated after construction; a single validated Config can
// back any number of concurrent evaluations.
type Config struct {
	// RSI on the primary timeframe
	RSIPeriod     int     // e.g., 14
	RSIOversold   float64 // long entries require RSI below this, e.g., 30
	RSIOverbought float64 // short entries require RSI above this, e.g., 70

	// RSI on the higher timeframe, used purely as a trend filter
	HigherTFRSIPeriod int     // e.g., 14
	HigherTFNeutral   float64 // midpoint separating up/down trend, e.g., 50

	// MACD on the primary timeframe
	MACDFastPeriod   int // e.g., 12
	MACDSlowPeriod   int // e.g., 26
	MACDSignalPeriod int // e.g., 9

	// ATR volatility filter; the band bounds are ATR as a fraction of the
	// latest close, so they hold across symbols of any price scale
	ATRPeriod   int     // e.g., 14
	ATRBandLow  float64 // below this the market is too quiet to trade, e.g., 0.001
	ATRBandHigh float64 // above this it is too unstable, e.g., 0.05

	// Leverage and stoploss sizing
	MinLeverage       float64 // applied at the high end of the ATR band, e.g., 2.0
	MaxLeverage       float64 // applied at the low end of the ATR band, e.g., 3.0
	ATRStopMultiplier float64 // stoploss = -(ATR fraction * multiplier), e.g., 1.5
}

// DefaultConfig returns the canonical parameter set for 5m candles with a 1h
// trend filter.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:         14,
		RSIOversold:       30,
		RSIOverbought:     70,
		HigherTFRSIPeriod: 14,
		HigherTFNeutral:   50,
		MACDFastPeriod:    12,
		MACDSlowPeriod:    26,
		MACDSignalPeriod:  9,
		ATRPeriod:         14,
		ATRBandLow:        0.001,
		ATRBandHigh:       0.05,
		MinLeverage:       2.0,
		MaxLeverage:       3.0,
		ATRStopMultiplier: 1.5,
	}
}

// Validate checks the configuration once, so that nonsense surfaces at
// startup instead of silently clamping per candle.
func (c Config) Validate() error {
	var errs []string

	if c.RSIPeriod <= 0 || c.HigherTFRSIPeriod <= 0 || c.ATRPeriod <= 0 {
		errs = append(errs, "indicator periods must be positive")
	}
	if c.MACDFastPeriod <= 0 || c.MACDSlowPeriod <= 0 || c.MACDSignalPeriod <= 0 {
		errs = append(errs, "MACD periods must be positive")
	}
	if c.MACDFastPeriod >= c.MACDSlowPeriod {
		errs = append(errs, "MACD fast period must be less than slow period")
	}
	if c.RSIOversold < 0 || c.RSIOverbought > 100 || c.RSIOversold >= c.RSIOverbought {
		errs = append(errs, "invalid RSI thresholds (oversold must be < overbought, within 0-100)")
	}
	if c.HigherTFNeutral <= 0 || c.HigherTFNeutral >= 100 {
		errs = append(errs, "higher-timeframe neutral RSI must be within (0, 100)")
	}
	if c.ATRBandLow < 0 || c.ATRBandLow >= c.ATRBandHigh {
		errs = append(errs, "invalid ATR band (low must be >= 0 and < high)")
	}
	if c.MinLeverage <= 0 || c.MinLeverage > c.MaxLeverage {
		errs = append(errs, "invalid leverage bounds (min must be positive and <= max)")
	}
	if c.ATRStopMultiplier <= 0 {
		errs = append(errs, "ATR stop multiplier must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("signal engine configuration invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Engine classifies the latest candle of a window as Buy, Sell or Hold and
// attaches leverage and stoploss to directional signals. It is stateless and
// side-effect-free per evaluation: identical input windows and configuration
// always yield an identical Signal.
type Engine struct {
	cfg    Config
	logger ports.Logger
	rsi    *indicators.RSI
	htfRSI *indicators.RSI
	macd   *indicators.MACD
	atr    *indicators.ATR
}

// New creates a new Engine. The configuration is validated here; the engine
// refuses to initialize on out-of-bounds values rather than clamping them.
func New(cfg Config, logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for signal engine")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		logger: logger,
		rsi: indicators.NewRSI(indicators.RSIConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.RSIPeriod},
			Overbought:      cfg.RSIOverbought,
			Oversold:        cfg.RSIOversold,
		}),
		htfRSI: indicators.NewRSI(indicators.RSIConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.HigherTFRSIPeriod},
		}),
		macd: indicators.NewMACD(indicators.MACDConfig{
			FastPeriod:   cfg.MACDFastPeriod,
			SlowPeriod:   cfg.MACDSlowPeriod,
			SignalPeriod: cfg.MACDSignalPeriod,
		}),
		atr: indicators.NewATR(indicators.ATRConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ATRPeriod},
		}),
	}, nil
}

// Config returns the immutable configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// RequiredDataPoints returns the minimum primary-window length for a
// directional signal to be possible: the longest indicator lookback.
func (e *Engine) RequiredDataPoints() int {
	required := e.rsi.RequiredDataPoints()
	if n := e.macd.RequiredDataPoints(); n > required {
		required = n
	}
	if n := e.atr.RequiredDataPoints(); n > required {
		required = n
	}
	return required
}

// HigherTFRequiredDataPoints returns the minimum aligned higher-timeframe
// window length.
func (e *Engine) HigherTFRequiredDataPoints() int {
	return e.htfRSI.RequiredDataPoints()
}

// Evaluate classifies the latest candle of the window. It is the fail-safe
// boundary required by the host's per-candle loop: insufficient data, a
// malformed window or an indicator failure all yield Hold, never an error or
// panic, so one bad candle cannot halt processing of subsequent ones.
func (e *Engine) Evaluate(ctx context.Context, window, higherTF []*domain.Candle) domain.Signal {
	if len(window) < e.RequiredDataPoints() {
		e.logger.Debug(ctx, "window too short for evaluation",
			map[string]interface{}{"available": len(window), "required": e.RequiredDataPoints()})
		return domain.HoldSignal()
	}
	if err := domain.ValidateWindow(window); err != nil {
		e.logger.Debug(ctx, "rejecting malformed primary window", map[string]interface{}{"reason": err.Error()})
		return domain.HoldSignal()
	}

	latest := window[len(window)-1]
	aligned := domain.AlignHigherTimeframe(higherTF, latest.OpenTime)
	if len(aligned) < e.HigherTFRequiredDataPoints() {
		e.logger.Debug(ctx, "higher-timeframe window too short for trend filter",
			map[string]interface{}{"available": len(aligned), "required": e.HigherTFRequiredDataPoints()})
		return domain.HoldSignal()
	}
	if err := domain.ValidateWindow(aligned); err != nil {
		e.logger.Debug(ctx, "rejecting malformed higher-timeframe window", map[string]interface{}{"reason": err.Error()})
		return domain.HoldSignal()
	}

	snap, err := e.snapshot(ctx, window, aligned)
	if err != nil {
		e.logger.Debug(ctx, "indicator computation failed", map[string]interface{}{"reason": err.Error()})
		return domain.HoldSignal()
	}

	return e.decide(snap)
}

// snapshot computes the per-candle indicator values for the latest candle.
func (e *Engine) snapshot(ctx context.Context, window, higherTF []*domain.Candle) (domain.IndicatorSnapshot, error) {
	var snap domain.IndicatorSnapshot

	rsi, err := e.rsi.Calculate(ctx, window)
	if err != nil {
		return snap, fmt.Errorf("RSI: %w", err)
	}

	htfRSI, err := e.htfRSI.Calculate(ctx, higherTF)
	if err != nil {
		return snap, fmt.Errorf("higher-timeframe RSI: %w", err)
	}

	macd, err := e.macd.Calculate(ctx, window)
	if err != nil {
		return snap, fmt.Errorf("MACD: %w", err)
	}

	atr, err := e.atr.Calculate(ctx, window)
	if err != nil {
		return snap, fmt.Errorf("ATR: %w", err)
	}

	latestClose := window[len(window)-1].Close
	snap = domain.IndicatorSnapshot{
		RSI:            rsi,
		MACD:           macd.MACD,
		MACDSignal:     macd.Signal,
		MACDHistogram:  macd.Histogram,
		PrevMACD:       macd.PrevMACD,
		PrevMACDSignal: macd.PrevSignal,
		ATR:            atr,
		ATRFraction:    atr / latestClose,
		HigherTFRSI:    htfRSI,
	}
	return snap, nil
}

// decide turns an indicator snapshot into a Signal. Kept separate from the
// window plumbing so the rule set is testable on constructed snapshots.
func (e *Engine) decide(snap domain.IndicatorSnapshot) domain.Signal {
	crossedUp := snap.PrevMACD <= snap.PrevMACDSignal && snap.MACD > snap.MACDSignal
	crossedDown := snap.PrevMACD >= snap.PrevMACDSignal && snap.MACD < snap.MACDSignal

	buyCandidate := snap.RSI < e.cfg.RSIOversold && crossedUp && snap.HigherTFRSI > e.cfg.HigherTFNeutral
	sellCandidate := snap.RSI > e.cfg.RSIOverbought && crossedDown && snap.HigherTFRSI < e.cfg.HigherTFNeutral

	if !buyCandidate && !sellCandidate {
		return domain.Signal{Direction: domain.Hold, Snapshot: snap}
	}

	// The volatility filter is a veto, not a signal source: a candidate that
	// falls outside the ATR band is suppressed regardless of how strong the
	// momentum conditions look.
	if snap.ATRFraction < e.cfg.ATRBandLow || snap.ATRFraction > e.cfg.ATRBandHigh {
		return domain.Signal{Direction: domain.Hold, Snapshot: snap}
	}

	direction := domain.Buy
	if sellCandidate {
		direction = domain.Sell
	}

	return domain.Signal{
		Direction: direction,
		Leverage: risk.LeverageForVolatility(snap.ATRFraction,
			e.cfg.ATRBandLow, e.cfg.ATRBandHigh, e.cfg.MinLeverage, e.cfg.MaxLeverage),
		Stoploss: risk.StoplossForVolatility(snap.ATRFraction, e.cfg.ATRStopMultiplier),
		Snapshot: snap,
	}
}
