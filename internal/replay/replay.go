package replay

import (
	"context"
	"fmt"

	"cryptoSignalEngine/internal/domain"
	"cryptoSignalEngine/internal/metrics"
	"cryptoSignalEngine/internal/ports"
	"cryptoSignalEngine/internal/risk"
)

// Config holds configuration for a replay run.
type Config struct {
	Symbol       string
	InitialFunds float64
	// ROITable applies time-laddered take-profit exits; nil disables them.
	ROITable *risk.ROITable
	// Trailing stop parameters applied to every opened position.
	TrailingActivation float64 // e.g., 0.02
	TrailingDistance   float64 // e.g., 0.01
}

// Run replays a candle history through the evaluator the way the live host
// would feed it candle by candle, simulating one position at a time. It
// exercises the engine's entry signals together with the stoploss, trailing
// stop and ROI exits, and aggregates trade statistics.
//
// The higherTF series is passed whole on every step; the engine trims it to
// what was closed at each candle, so there is no lookahead.
func Run(ctx context.Context, eval ports.Evaluator, candles, higherTF []*domain.Candle, cfg Config, logger ports.Logger) (*Result, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for replay")
	}
	if cfg.InitialFunds <= 0 {
		return nil, fmt.Errorf("initial funds must be positive")
	}
	if cfg.TrailingActivation <= 0 || cfg.TrailingDistance <= 0 {
		return nil, fmt.Errorf("trailing parameters must be positive")
	}
	required := eval.RequiredDataPoints()
	if len(candles) < required+1 {
		return nil, fmt.Errorf("not enough candles for replay: need more than %d, got %d", required, len(candles))
	}
	if err := domain.ValidateWindow(candles); err != nil {
		return nil, fmt.Errorf("invalid candle history: %w", err)
	}

	var (
		position *domain.Position
		trailing *risk.TrailingStop
		trades   []*domain.Trade
	)

	closePosition := func(price float64, at *domain.Candle, reason domain.CloseReason) {
		position.ExitPrice = price
		position.ExitTime = at.OpenTime
		position.Status = domain.StatusClosed
		position.CloseReason = reason

		trade := &domain.Trade{
			Symbol:      position.Symbol,
			Direction:   position.Direction,
			EntryPrice:  position.EntryPrice,
			ExitPrice:   price,
			Leverage:    position.Leverage,
			Return:      position.Profit(price) * position.Leverage,
			EntryTime:   position.EntryTime,
			ExitTime:    at.OpenTime,
			CloseReason: reason,
		}
		trades = append(trades, trade)
		metrics.ReplayTradesClosed.WithLabelValues(string(reason)).Inc()
		logger.Debug(ctx, "replay position closed", map[string]interface{}{
			"direction": position.Direction,
			"entry":     position.EntryPrice,
			"exit":      price,
			"return":    trade.Return,
			"reason":    reason,
		})
		position = nil
		trailing = nil
	}

	for i := required; i < len(candles); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		current := candles[i]
		window := candles[:i+1]

		sig := eval.Evaluate(ctx, window, higherTF)
		metrics.EvaluationsTotal.Inc()
		metrics.SignalsEmitted.WithLabelValues(string(sig.Direction)).Inc()

		if position != nil {
			profit := position.Profit(current.Close)
			held := current.OpenTime.Sub(position.EntryTime)
			stop := trailing.Update(profit)

			switch {
			case profit <= stop:
				reason := domain.CloseReasonStopLoss
				if trailing.Active() {
					reason = domain.CloseReasonTrailingStop
				}
				closePosition(current.Close, current, reason)
			case cfg.ROITable != nil && cfg.ROITable.Reached(held, profit):
				closePosition(current.Close, current, domain.CloseReasonROI)
			case sig.IsDirectional() && sig.Direction != position.Direction:
				closePosition(current.Close, current, domain.CloseReasonOppositeSignal)
			}
		}

		if position == nil && sig.IsDirectional() {
			position = &domain.Position{
				Symbol:     cfg.Symbol,
				Direction:  sig.Direction,
				EntryPrice: current.Close,
				Leverage:   sig.Leverage,
				Stoploss:   sig.Stoploss,
				EntryTime:  current.OpenTime,
				Status:     domain.StatusOpen,
			}
			ts, err := risk.NewTrailingStop(sig.Stoploss, cfg.TrailingActivation, cfg.TrailingDistance)
			if err != nil {
				return nil, fmt.Errorf("seeding trailing stop: %w", err)
			}
			trailing = ts
			logger.Debug(ctx, "replay position opened", map[string]interface{}{
				"direction": sig.Direction,
				"entry":     current.Close,
				"leverage":  sig.Leverage,
				"stoploss":  sig.Stoploss,
			})
		}
	}

	if position != nil {
		last := candles[len(candles)-1]
		closePosition(last.Close, last, domain.CloseReasonEndOfData)
	}

	return Summarize(trades, cfg.InitialFunds), nil
}
