package ports

import (
	"context"

	"cryptoSignalEngine/internal/domain"
)

// Evaluator defines the interface for signal engines.
type Evaluator interface {
	// Evaluate classifies the latest candle of the window given the aligned
	// higher-timeframe window. It never fails: insufficient or malformed
	// input yields a Hold signal.
	Evaluate(ctx context.Context, window, higherTF []*domain.Candle) domain.Signal

	// RequiredDataPoints returns the minimum window length needed for a
	// directional signal to be possible.
	RequiredDataPoints() int
}
