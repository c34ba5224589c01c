package tuning

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cryptoSignalEngine/internal/domain"
	"cryptoSignalEngine/internal/ports"
	"cryptoSignalEngine/internal/replay"
	"cryptoSignalEngine/internal/signal"
)

// Recognized parameter range names.
const (
	ParamRSIOversold       = "rsi_oversold"
	ParamRSIOverbought     = "rsi_overbought"
	ParamATRBandLow        = "atr_band_low"
	ParamATRBandHigh       = "atr_band_high"
	ParamATRStopMultiplier = "atr_stop_multiplier"
)

// ParameterRange defines a range for an engine parameter to sweep.
type ParameterRange struct {
	Name string
	Min  float64
	Max  float64
	Step float64
}

// Result holds the outcome of one parameter combination.
type Result struct {
	Parameters map[string]float64
	Config     signal.Config
	Replay     *replay.Result
	Score      float64
}

// Config holds configuration for the tuner.
type Config struct {
	Base   signal.Config
	Ranges []ParameterRange
	Replay replay.Config
	// Score ranks replay outcomes; higher is better. Nil uses DefaultScore.
	Score func(*replay.Result) float64
}

// DefaultScore rewards return and penalizes drawdown.
func DefaultScore(r *replay.Result) float64 {
	return r.ReturnOnInvestment - r.MaxDrawdown
}

// Tuner sweeps engine parameters over a candle history, replaying each
// combination and ranking the outcomes.
type Tuner struct {
	config Config
}

// NewTuner creates a new tuner instance.
func NewTuner(config Config) (*Tuner, error) {
	if len(config.Ranges) == 0 {
		return nil, fmt.Errorf("at least one parameter range is required")
	}
	for _, r := range config.Ranges {
		if r.Step <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("invalid range for %q", r.Name)
		}
		switch r.Name {
		case ParamRSIOversold, ParamRSIOverbought, ParamATRBandLow, ParamATRBandHigh, ParamATRStopMultiplier:
		default:
			return nil, fmt.Errorf("unknown parameter %q", r.Name)
		}
	}
	if config.Score == nil {
		config.Score = DefaultScore
	}
	return &Tuner{config: config}, nil
}

// Optimize replays every parameter combination concurrently and returns the
// results sorted best first. Combinations yielding an invalid engine
// configuration (e.g. oversold above overbought) are skipped silently; the
// sweep is expected to wander into nonsense corners.
func (t *Tuner) Optimize(ctx context.Context, candles, higherTF []*domain.Candle, logger ports.Logger) ([]Result, error) {
	combinations := t.generateCombinations()
	if len(combinations) == 0 {
		return nil, fmt.Errorf("parameter ranges produced no combinations")
	}

	resultChan := make(chan Result, len(combinations))
	var wg sync.WaitGroup

	for _, params := range combinations {
		wg.Add(1)
		go func(params map[string]float64) {
			defer wg.Done()

			cfg := applyParams(t.config.Base, params)
			engine, err := signal.New(cfg, logger)
			if err != nil {
				return
			}
			res, err := replay.Run(ctx, engine, candles, higherTF, t.config.Replay, logger)
			if err != nil {
				return
			}
			resultChan <- Result{
				Parameters: params,
				Config:     cfg,
				Replay:     res,
				Score:      t.config.Score(res),
			}
		}(params)
	}

	wg.Wait()
	close(resultChan)

	results := make([]Result, 0, len(combinations))
	for r := range resultChan {
		results = append(results, r)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no parameter combination produced a valid engine")
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// generateCombinations builds the cartesian product of all parameter ranges.
func (t *Tuner) generateCombinations() []map[string]float64 {
	combinations := []map[string]float64{{}}
	for _, r := range t.config.Ranges {
		var expanded []map[string]float64
		for v := r.Min; v <= r.Max+1e-9; v += r.Step {
			for _, base := range combinations {
				combo := make(map[string]float64, len(base)+1)
				for k, val := range base {
					combo[k] = val
				}
				combo[r.Name] = v
				expanded = append(expanded, combo)
			}
		}
		combinations = expanded
	}
	return combinations
}

// applyParams overlays a parameter combination onto the base configuration.
func applyParams(base signal.Config, params map[string]float64) signal.Config {
	cfg := base
	for name, v := range params {
		switch name {
		case ParamRSIOversold:
			cfg.RSIOversold = v
		case ParamRSIOverbought:
			cfg.RSIOverbought = v
		case ParamATRBandLow:
			cfg.ATRBandLow = v
		case ParamATRBandHigh:
			cfg.ATRBandHigh = v
		case ParamATRStopMultiplier:
			cfg.ATRStopMultiplier = v
		}
	}
	return cfg
}
