package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validWindow(n int, start time.Time, interval time.Duration) []*Candle {
	candles := make([]*Candle, n)
	for i := 0; i < n; i++ {
		open := start.Add(time.Duration(i) * interval)
		candles[i] = &Candle{
			Symbol:    "ETHUSDT",
			OpenTime:  open,
			CloseTime: open.Add(interval),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    10,
			IsFinal:   true,
		}
	}
	return candles
}

func TestValidateWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func([]*Candle) []*Candle
		wantErr string
	}{
		{
			name:   "valid window",
			mutate: func(c []*Candle) []*Candle { return c },
		},
		{
			name:    "empty window",
			mutate:  func(c []*Candle) []*Candle { return nil },
			wantErr: "empty candle window",
		},
		{
			name: "nil candle",
			mutate: func(c []*Candle) []*Candle {
				c[2] = nil
				return c
			},
			wantErr: "nil candle",
		},
		{
			name: "zero open time",
			mutate: func(c []*Candle) []*Candle {
				c[1].OpenTime = time.Time{}
				return c
			},
			wantErr: "zero open time",
		},
		{
			name: "high below low",
			mutate: func(c []*Candle) []*Candle {
				c[3].High = c[3].Low - 1
				return c
			},
			wantErr: "below low",
		},
		{
			name: "non-positive price",
			mutate: func(c []*Candle) []*Candle {
				c[0].Close = 0
				return c
			},
			wantErr: "non-positive price",
		},
		{
			name: "negative volume",
			mutate: func(c []*Candle) []*Candle {
				c[4].Volume = -1
				return c
			},
			wantErr: "negative volume",
		},
		{
			name: "duplicate open time",
			mutate: func(c []*Candle) []*Candle {
				c[2].OpenTime = c[1].OpenTime
				return c
			},
			wantErr: "not strictly increasing",
		},
		{
			name: "out of order",
			mutate: func(c []*Candle) []*Candle {
				c[1], c[2] = c[2], c[1]
				return c
			},
			wantErr: "not strictly increasing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := tt.mutate(validWindow(5, start, 5*time.Minute))
			err := ValidateWindow(window)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestTrimForming(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := validWindow(5, start, 5*time.Minute) // closes at 00:05 .. 00:25

	t.Run("drops the candle still forming", func(t *testing.T) {
		now := start.Add(22 * time.Minute) // inside the last candle's interval
		trimmed := TrimForming(candles, now)
		assert.Len(t, trimmed, 4)
		assert.False(t, trimmed[len(trimmed)-1].CloseTime.After(now))
	})

	t.Run("keeps a fully closed snapshot", func(t *testing.T) {
		trimmed := TrimForming(candles, start.Add(25*time.Minute))
		assert.Len(t, trimmed, 5)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, TrimForming(nil, start))
	})
}

func TestAppendToWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("appends a new open time and trims the front", func(t *testing.T) {
		window := validWindow(4, start, 5*time.Minute)
		next := validWindow(5, start, 5*time.Minute)[4]
		window = AppendToWindow(window, next, 4)
		assert.Len(t, window, 4)
		assert.Equal(t, next.OpenTime, window[3].OpenTime)
		assert.Equal(t, start.Add(5*time.Minute), window[0].OpenTime)
		assert.NoError(t, ValidateWindow(window))
	})

	t.Run("replaces the tail on a duplicate open time", func(t *testing.T) {
		window := validWindow(4, start, 5*time.Minute)
		closed := *window[3]
		closed.Close = 123
		window = AppendToWindow(window, &closed, 16)
		assert.Len(t, window, 4)
		assert.Equal(t, 123.0, window[3].Close)
		assert.NoError(t, ValidateWindow(window))
	})
}

func TestAlignHigherTimeframe(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	htf := validWindow(6, start, time.Hour) // opens 00:00 .. 05:00, closes 01:00 .. 06:00

	tests := []struct {
		name        string
		primaryOpen time.Time
		wantLen     int
	}{
		{name: "primary before any close", primaryOpen: start.Add(30 * time.Minute), wantLen: 0},
		{name: "primary at first close", primaryOpen: start.Add(time.Hour), wantLen: 1},
		{name: "primary mid-series excludes the forming candle", primaryOpen: start.Add(2*time.Hour + 25*time.Minute), wantLen: 2},
		{name: "primary at last close", primaryOpen: start.Add(6 * time.Hour), wantLen: 6},
		{name: "primary after all candles", primaryOpen: start.Add(24 * time.Hour), wantLen: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aligned := AlignHigherTimeframe(htf, tt.primaryOpen)
			assert.Len(t, aligned, tt.wantLen)
			for _, c := range aligned {
				assert.False(t, c.CloseTime.After(tt.primaryOpen))
			}
		})
	}
}
