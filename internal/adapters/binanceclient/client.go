package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cryptoSignalEngine/internal/domain"
	"cryptoSignalEngine/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Client implements the ports.MarketDataClient interface using the
// go-binance library. It only covers the candle surface the signal tooling
// needs; order placement stays with the host framework.
type Client struct {
	futuresClient        *futures.Client
	logger               ports.Logger
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey               string
	SecretKey            string
	UseTestnet           bool
	Logger               ports.Logger
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// New creates a new Binance market-data adapter. Keys may be empty since all
// candle endpoints are public.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
	} else {
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{
		"baseURL": client.BaseURL, "testnet": cfg.UseTestnet})

	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = 1 * time.Second
	}
	maxAttempts := cfg.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &Client{
		futuresClient:        client,
		logger:               cfg.Logger,
		reconnectDelay:       reconnectDelay,
		maxReconnectAttempts: maxAttempts,
	}, nil
}

// handleError translates Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1000, -1001: // internal error / disconnected
			mappedErr = ports.ErrExchangeUnavailable
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Invalid signature
			mappedErr = ports.ErrAuthenticationFailed
		case -2014, -2015: // API-key format invalid / bad key, IP or permissions
			mappedErr = ports.ErrInvalidAPIKeys
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1120, -1121, -1127:
			// parameter and request format errors, including bad symbol/interval
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "use of closed network connection"),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetServerTime retrieves the current server time from the exchange.
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	op := "GetServerTime"
	serverTimeMs, err := c.futuresClient.NewServerTimeService().Do(ctx)
	if err != nil {
		return time.Time{}, c.handleError(ctx, err, op)
	}
	return time.UnixMilli(serverTimeMs), nil
}

// GetCandles retrieves the most recent candles for the given symbol and interval.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error) {
	op := "GetCandles"
	klines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	candles := make([]*domain.Candle, 0, len(klines))
	for _, bk := range klines {
		candle, err := translateKline(bk, symbol, interval)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical candle: %w", err), op)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// GetCandlesRange fetches all candles for a symbol/interval between start
// and end time, paging through the API limit.
func (c *Client) GetCandlesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Candle, error) {
	op := "GetCandlesRange"
	var all []*domain.Candle
	const maxLimit = 1500
	from := start

	for {
		klines, err := c.futuresClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxLimit).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		for _, bk := range klines {
			candle, err := translateKline(bk, symbol, interval)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate candle range: %w", err), op)
			}
			all = append(all, candle)
		}
		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime)
		if from.After(end) || len(klines) < maxLimit {
			break
		}
	}

	return all, nil
}

// StreamCandles starts a WebSocket candle stream with reconnect and
// exponential backoff, translating events into domain candles.
func (c *Client) StreamCandles(ctx context.Context, symbol, interval string, handler func(candle *domain.Candle), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error) {
	op := "StreamCandles"
	wsCtx, cancelWs := context.WithCancel(ctx)

	binanceHandler := func(event *futures.WsKlineEvent) {
		candle, err := translateWsKline(event)
		if err != nil {
			c.logger.Error(wsCtx, err, op+": Failed to translate WebSocket candle event")
			return
		}
		handler(candle)
	}

	binanceErrHandler := func(err error) {
		translatedErr := c.handleError(wsCtx, err, op+" WebSocket")
		errHandler(translatedErr)
	}

	doneCh = make(chan struct{})
	stopCh = make(chan struct{})

	go func() {
		defer cancelWs()
		defer close(doneCh)

		attempt := 0
		for {
			select {
			case <-wsCtx.Done():
				return
			case <-stopCh:
				return
			default:
			}

			innerDoneCh, innerStopCh, connectErr := futures.WsKlineServe(symbol, interval, binanceHandler, binanceErrHandler)
			if connectErr != nil {
				c.handleError(wsCtx, connectErr, op+" connection attempt")
				attempt++
				if attempt >= c.maxReconnectAttempts {
					c.logger.Error(wsCtx, connectErr, op+": Max reconnection attempts exceeded, giving up.",
						map[string]interface{}{"symbol": symbol, "interval": interval, "maxAttempts": c.maxReconnectAttempts})
					return
				}
				delay := c.reconnectDelay * time.Duration(1<<uint(attempt-1))
				c.logger.Info(wsCtx, op+": Connection failed, retrying...",
					map[string]interface{}{"symbol": symbol, "interval": interval, "attempt": attempt + 1, "delay": delay.String()})
				select {
				case <-time.After(delay):
					continue
				case <-wsCtx.Done():
					return
				case <-stopCh:
					return
				}
			}

			c.logger.Info(wsCtx, op+": WebSocket connection established.",
				map[string]interface{}{"symbol": symbol, "interval": interval})
			attempt = 0

			select {
			case <-innerDoneCh:
				c.logger.Warn(wsCtx, op+": WebSocket connection closed unexpectedly. Reconnecting...",
					map[string]interface{}{"symbol": symbol, "interval": interval})
			case <-wsCtx.Done():
				close(innerStopCh)
				return
			case <-stopCh:
				close(innerStopCh)
				return
			}
		}
	}()

	return doneCh, stopCh, nil
}

func translateWsKline(event *futures.WsKlineEvent) (*domain.Candle, error) {
	if event == nil {
		return nil, errors.New("received nil kline event")
	}
	k := event.Kline
	open, high, low, cls, vol, err := parseOHLCV(k.Open, k.High, k.Low, k.Close, k.Volume)
	if err != nil {
		return nil, err
	}
	return &domain.Candle{
		OpenTime:  time.UnixMilli(k.StartTime),
		CloseTime: time.UnixMilli(k.EndTime),
		Symbol:    k.Symbol,
		Interval:  k.Interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
		IsFinal:   k.IsFinal,
	}, nil
}

func translateKline(bk *futures.Kline, symbol, interval string) (*domain.Candle, error) {
	if bk == nil {
		return nil, errors.New("received nil historical kline")
	}
	open, high, low, cls, vol, err := parseOHLCV(bk.Open, bk.High, bk.Low, bk.Close, bk.Volume)
	if err != nil {
		return nil, err
	}
	return &domain.Candle{
		OpenTime:  time.UnixMilli(bk.OpenTime),
		CloseTime: time.UnixMilli(bk.CloseTime),
		Symbol:    symbol,   // not carried in futures.Kline
		Interval:  interval, // not carried in futures.Kline
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
		IsFinal:   true, // historical candles are always final
	}, nil
}

func parseOHLCV(openS, highS, lowS, closeS, volS string) (open, high, low, cls, vol float64, err error) {
	if open, err = strconv.ParseFloat(openS, 64); err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("parsing open price '%s': %w", openS, err)
	}
	if high, err = strconv.ParseFloat(highS, 64); err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("parsing high price '%s': %w", highS, err)
	}
	if low, err = strconv.ParseFloat(lowS, 64); err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("parsing low price '%s': %w", lowS, err)
	}
	if cls, err = strconv.ParseFloat(closeS, 64); err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("parsing close price '%s': %w", closeS, err)
	}
	if vol, err = strconv.ParseFloat(volS, 64); err != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("parsing volume '%s': %w", volS, err)
	}
	return open, high, low, cls, vol, nil
}
