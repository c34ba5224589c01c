package signal

import (
	"context"
	"testing"
	"time"

	"cryptoSignalEngine/internal/domain"
	"cryptoSignalEngine/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

// makeWindow builds a valid flat candle series ending at 'end'.
func makeWindow(n int, price float64, interval time.Duration, end time.Time) []*domain.Candle {
	candles := make([]*domain.Candle, n)
	for i := 0; i < n; i++ {
		open := end.Add(time.Duration(i-n+1) * interval)
		candles[i] = &domain.Candle{
			Symbol:    "ETHUSDT",
			OpenTime:  open,
			CloseTime: open.Add(interval),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    100,
			IsFinal:   true,
		}
	}
	return candles
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		logger  ports.Logger
		wantErr bool
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			logger:  &mockLogger{},
			wantErr: false,
		},
		{
			name:    "nil logger",
			mutate:  func(c *Config) {},
			logger:  nil,
			wantErr: true,
		},
		{
			name:    "zero RSI period",
			mutate:  func(c *Config) { c.RSIPeriod = 0 },
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "oversold above overbought",
			mutate:  func(c *Config) { c.RSIOversold = 80; c.RSIOverbought = 20 },
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "MACD fast period not below slow",
			mutate:  func(c *Config) { c.MACDFastPeriod = 26; c.MACDSlowPeriod = 26 },
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "inverted ATR band",
			mutate:  func(c *Config) { c.ATRBandLow = 0.05; c.ATRBandHigh = 0.001 },
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "inverted leverage bounds",
			mutate:  func(c *Config) { c.MinLeverage = 3.0; c.MaxLeverage = 2.0 },
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "non-positive stop multiplier",
			mutate:  func(c *Config) { c.ATRStopMultiplier = 0 },
			logger:  &mockLogger{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			engine, err := New(cfg, tt.logger)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, engine)
			} else {
				require.NoError(t, err)
				require.NotNil(t, engine)
				assert.Equal(t, cfg, engine.Config())
			}
		})
	}
}

func TestEngine_RequiredDataPoints(t *testing.T) {
	engine, err := New(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)

	// MACD(12,26,9) is the longest lookback of the default set.
	assert.Equal(t, 35, engine.RequiredDataPoints())
	assert.Equal(t, 15, engine.HigherTFRequiredDataPoints())
}

func TestEngine_Evaluate_FailSafe(t *testing.T) {
	ctx := context.Background()
	end := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine, err := New(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)

	// One extra candle, since the one still forming at 'end' is trimmed away.
	higherTF := makeWindow(engine.HigherTFRequiredDataPoints()+1, 2000, time.Hour, end)

	t.Run("window too short", func(t *testing.T) {
		window := makeWindow(engine.RequiredDataPoints()-1, 2000, 5*time.Minute, end)
		sig := engine.Evaluate(ctx, window, higherTF)
		assert.Equal(t, domain.Hold, sig.Direction)
		assert.Zero(t, sig.Leverage)
		assert.Zero(t, sig.Stoploss)
	})

	t.Run("empty window", func(t *testing.T) {
		sig := engine.Evaluate(ctx, nil, higherTF)
		assert.Equal(t, domain.Hold, sig.Direction)
	})

	t.Run("malformed candle in window", func(t *testing.T) {
		window := makeWindow(engine.RequiredDataPoints(), 2000, 5*time.Minute, end)
		window[10].High = window[10].Low - 1
		sig := engine.Evaluate(ctx, window, higherTF)
		assert.Equal(t, domain.Hold, sig.Direction)
	})

	t.Run("higher timeframe too short", func(t *testing.T) {
		window := makeWindow(engine.RequiredDataPoints(), 2000, 5*time.Minute, end)
		sig := engine.Evaluate(ctx, window, higherTF[:3])
		assert.Equal(t, domain.Hold, sig.Direction)
	})

	t.Run("no higher timeframe at all", func(t *testing.T) {
		window := makeWindow(engine.RequiredDataPoints(), 2000, 5*time.Minute, end)
		sig := engine.Evaluate(ctx, window, nil)
		assert.Equal(t, domain.Hold, sig.Direction)
	})
}

func TestEngine_Evaluate_Deterministic(t *testing.T) {
	ctx := context.Background()
	end := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine, err := New(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)

	window := makeWindow(engine.RequiredDataPoints()+10, 2000, 5*time.Minute, end)
	// Shape the tail so the indicators see some movement.
	for i := range window {
		window[i].Close += float64(i % 7)
		window[i].High = window[i].Close + 2
		window[i].Low = window[i].Close - 2
	}
	higherTF := makeWindow(engine.HigherTFRequiredDataPoints()+5, 2000, time.Hour, end)

	first := engine.Evaluate(ctx, window, higherTF)
	second := engine.Evaluate(ctx, window, higherTF)
	assert.Equal(t, first, second)
}

// makeTrendWindow builds a valid candle series with the given closes, each
// candle opening at the previous close, ending at 'end'.
func makeTrendWindow(closes []float64, interval time.Duration, end time.Time) []*domain.Candle {
	candles := make([]*domain.Candle, len(closes))
	for i, close := range closes {
		open := 2*closes[0] - closes[1]
		if i > 0 {
			open = closes[i-1]
		}
		high, low := open, close
		if close > open {
			high, low = close, open
		}
		openTime := end.Add(time.Duration(i-len(closes)+1) * interval)
		candles[i] = &domain.Candle{
			Symbol:    "ETHUSDT",
			OpenTime:  openTime,
			CloseTime: openTime.Add(interval),
			Open:      open,
			High:      high + 0.5,
			Low:       low - 0.5,
			Close:     close,
			Volume:    100,
			IsFinal:   true,
		}
	}
	return candles
}

// Drives real candle windows through Evaluate to a directional signal: a
// steady decline whose last candle pops produces an oversold RSI together
// with a bullish MACD crossover, and the rising hourly series keeps the
// trend filter open.
func TestEngine_Evaluate_EndToEnd(t *testing.T) {
	cfg := Config{
		RSIPeriod:         3,
		RSIOversold:       30,
		RSIOverbought:     70,
		HigherTFRSIPeriod: 3,
		HigherTFNeutral:   50,
		MACDFastPeriod:    2,
		MACDSlowPeriod:    4,
		MACDSignalPeriod:  2,
		ATRPeriod:         3,
		ATRBandLow:        0.001,
		ATRBandHigh:       0.05,
		MinLeverage:       2.0,
		MaxLeverage:       3.0,
		ATRStopMultiplier: 1.5,
	}
	end := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	buyCloses := []float64{100, 98, 96, 94, 92, 90, 88, 86, 84, 84.5}
	sellCloses := []float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 115.5}
	risingHTF := makeTrendWindow([]float64{100, 101, 102, 103, 104, 105}, time.Hour, end.Add(-time.Hour))
	fallingHTF := makeTrendWindow([]float64{105, 104, 103, 102, 101, 100}, time.Hour, end.Add(-time.Hour))

	t.Run("decline with a final pop emits Buy", func(t *testing.T) {
		engine, err := New(cfg, &mockLogger{})
		require.NoError(t, err)

		window := makeTrendWindow(buyCloses, 5*time.Minute, end)
		sig := engine.Evaluate(context.Background(), window, risingHTF)

		require.Equal(t, domain.Buy, sig.Direction)
		assert.InDelta(t, 11.111111, sig.Snapshot.RSI, 1e-6)
		assert.InDelta(t, -1.333333, sig.Snapshot.MACD, 1e-6)
		assert.InDelta(t, -1.555556, sig.Snapshot.MACDSignal, 1e-6)
		assert.InDelta(t, -2.0, sig.Snapshot.PrevMACD, 1e-9)
		assert.InDelta(t, -2.0, sig.Snapshot.PrevMACDSignal, 1e-9)
		assert.InDelta(t, 100.0, sig.Snapshot.HigherTFRSI, 1e-9)
		assert.InDelta(t, 2.5, sig.Snapshot.ATR, 1e-9)
		assert.InDelta(t, 2.5/84.5, sig.Snapshot.ATRFraction, 1e-9)
		assert.InDelta(t, 2.416616, sig.Leverage, 1e-5)
		assert.GreaterOrEqual(t, sig.Leverage, cfg.MinLeverage)
		assert.LessOrEqual(t, sig.Leverage, cfg.MaxLeverage)
		assert.InDelta(t, -(2.5/84.5)*1.5, sig.Stoploss, 1e-9)
	})

	t.Run("rally with a final drop emits Sell", func(t *testing.T) {
		engine, err := New(cfg, &mockLogger{})
		require.NoError(t, err)

		window := makeTrendWindow(sellCloses, 5*time.Minute, end)
		sig := engine.Evaluate(context.Background(), window, fallingHTF)

		require.Equal(t, domain.Sell, sig.Direction)
		assert.InDelta(t, 88.888889, sig.Snapshot.RSI, 1e-6)
		assert.InDelta(t, 1.333333, sig.Snapshot.MACD, 1e-6)
		assert.InDelta(t, 1.555556, sig.Snapshot.MACDSignal, 1e-6)
		assert.InDelta(t, 0.0, sig.Snapshot.HigherTFRSI, 1e-9)
		assert.InDelta(t, 2.5/115.5, sig.Snapshot.ATRFraction, 1e-9)
		assert.InDelta(t, 2.578673, sig.Leverage, 1e-5)
		assert.InDelta(t, -(2.5/115.5)*1.5, sig.Stoploss, 1e-9)
	})

	t.Run("volatility above the band vetoes the Buy", func(t *testing.T) {
		tight := cfg
		tight.ATRBandHigh = 0.02 // buy setup sits at ~0.0296
		engine, err := New(tight, &mockLogger{})
		require.NoError(t, err)

		window := makeTrendWindow(buyCloses, 5*time.Minute, end)
		sig := engine.Evaluate(context.Background(), window, risingHTF)

		assert.Equal(t, domain.Hold, sig.Direction)
		assert.Zero(t, sig.Leverage)
		assert.Zero(t, sig.Stoploss)
		assert.InDelta(t, 11.111111, sig.Snapshot.RSI, 1e-6)
	})
}

func TestEngine_Decide(t *testing.T) {
	engine, err := New(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)

	// Momentum conditions satisfied for a long entry, volatility inside the band.
	buySnap := domain.IndicatorSnapshot{
		RSI:            25,
		MACD:           0.5,
		MACDSignal:     0.2,
		PrevMACD:       -0.5,
		PrevMACDSignal: -0.2,
		ATRFraction:    0.01,
		HigherTFRSI:    60,
	}

	t.Run("buy entry", func(t *testing.T) {
		sig := engine.decide(buySnap)
		require.Equal(t, domain.Buy, sig.Direction)
		assert.True(t, sig.IsDirectional())

		// Leverage interpolates linearly across the ATR band.
		norm := (0.01 - 0.001) / (0.05 - 0.001)
		assert.InDelta(t, 3.0-norm*(3.0-2.0), sig.Leverage, 1e-9)
		assert.InDelta(t, -(0.01 * 1.5), sig.Stoploss, 1e-9)
		assert.Equal(t, buySnap, sig.Snapshot)
	})

	t.Run("sell entry", func(t *testing.T) {
		snap := domain.IndicatorSnapshot{
			RSI:            75,
			MACD:           -0.5,
			MACDSignal:     -0.2,
			PrevMACD:       0.5,
			PrevMACDSignal: 0.2,
			ATRFraction:    0.01,
			HigherTFRSI:    40,
		}
		sig := engine.decide(snap)
		require.Equal(t, domain.Sell, sig.Direction)
		assert.Negative(t, sig.Stoploss)
		assert.GreaterOrEqual(t, sig.Leverage, 2.0)
		assert.LessOrEqual(t, sig.Leverage, 3.0)
	})

	t.Run("higher timeframe filter blocks buy", func(t *testing.T) {
		snap := buySnap
		snap.HigherTFRSI = 40
		sig := engine.decide(snap)
		assert.Equal(t, domain.Hold, sig.Direction)
	})

	t.Run("RSI not oversold blocks buy", func(t *testing.T) {
		snap := buySnap
		snap.RSI = 45
		assert.Equal(t, domain.Hold, engine.decide(snap).Direction)
	})

	t.Run("no crossover blocks buy", func(t *testing.T) {
		snap := buySnap
		snap.PrevMACD = 0.4
		snap.PrevMACDSignal = 0.1
		assert.Equal(t, domain.Hold, engine.decide(snap).Direction)
	})

	t.Run("volatility above band vetoes", func(t *testing.T) {
		snap := buySnap
		snap.ATRFraction = 0.10
		sig := engine.decide(snap)
		assert.Equal(t, domain.Hold, sig.Direction)
		assert.Zero(t, sig.Leverage)
		assert.Zero(t, sig.Stoploss)
		assert.Equal(t, snap, sig.Snapshot)
	})

	t.Run("volatility below band vetoes", func(t *testing.T) {
		snap := buySnap
		snap.ATRFraction = 0.0001
		assert.Equal(t, domain.Hold, engine.decide(snap).Direction)
	})

	t.Run("leverage bounds at band edges", func(t *testing.T) {
		snap := buySnap
		snap.ATRFraction = 0.001
		assert.InDelta(t, 3.0, engine.decide(snap).Leverage, 1e-9)

		snap.ATRFraction = 0.05
		assert.InDelta(t, 2.0, engine.decide(snap).Leverage, 1e-9)
	})
}
