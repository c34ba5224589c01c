package ports

import (
	"context"
	"time"

	"cryptoSignalEngine/internal/domain"
)

// CandleRepository defines the interface for the local candle cache used by
// the offline tooling (fetcher and replay runner).
type CandleRepository interface {
	// StoreCandles saves a batch of candles, ignoring ones already present
	// for the same symbol/interval/open time.
	StoreCandles(ctx context.Context, candles []*domain.Candle) (int64, error)
	// FindRange retrieves candles for a symbol/interval between start and end,
	// ordered by open time ascending.
	FindRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Candle, error)
	// FindLatest retrieves the most recent candles for a symbol/interval, up
	// to a limit, ordered by open time ascending.
	FindLatest(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error)
	// CountBySymbol counts the cached candles for a symbol/interval.
	CountBySymbol(ctx context.Context, symbol, interval string) (int, error)
}
