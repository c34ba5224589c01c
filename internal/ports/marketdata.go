package ports

import (
	"context"
	"time"

	"cryptoSignalEngine/internal/domain"
)

// MarketDataClient defines the read-only exchange surface the signal tooling
// needs: historical candles and an optional live candle stream. Order
// placement and account management stay with the host framework and are
// deliberately absent here.
type MarketDataClient interface {
	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// GetServerTime retrieves the current server time from the exchange.
	GetServerTime(ctx context.Context) (time.Time, error)

	// GetCandles retrieves the most recent candles for the given symbol and interval.
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error)

	// GetCandlesRange fetches all candles for a symbol/interval between start and end time.
	GetCandlesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Candle, error)

	// StreamCandles starts a WebSocket stream for candle data.
	// It takes handlers for processing domain.Candle events and errors.
	// Returns channels to control the stream (doneCh, stopCh) or an error if connection fails.
	StreamCandles(ctx context.Context, symbol, interval string, handler func(candle *domain.Candle), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error)
}
