package domain

import (
	"fmt"
	"time"
)

// Candle represents a single OHLCV bar for one symbol and timeframe.
type Candle struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Trading symbol
	Interval  string    // Candle interval (e.g., "5m", "1h")
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Trading volume
	IsFinal   bool      // Whether this candle is closed
}

// ValidateWindow checks that a trailing window is usable for evaluation:
// non-empty, strictly increasing open times (no duplicates), and each candle
// internally consistent. A window failing these checks must be rejected as a
// whole; one bad candle must not crash the caller's per-candle loop.
func ValidateWindow(candles []*Candle) error {
	if len(candles) == 0 {
		return fmt.Errorf("empty candle window")
	}
	for i, c := range candles {
		if c == nil {
			return fmt.Errorf("nil candle at index %d", i)
		}
		if c.OpenTime.IsZero() {
			return fmt.Errorf("candle at index %d has zero open time", i)
		}
		if c.High < c.Low {
			return fmt.Errorf("candle at index %d has high %.8f below low %.8f", i, c.High, c.Low)
		}
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			return fmt.Errorf("candle at index %d has non-positive price", i)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle at index %d has negative volume %.8f", i, c.Volume)
		}
		if i > 0 && !candles[i-1].OpenTime.Before(c.OpenTime) {
			return fmt.Errorf("candle open times not strictly increasing at index %d", i)
		}
	}
	return nil
}

// AlignHigherTimeframe trims a higher-timeframe window so that it only
// contains candles already closed at the given primary timestamp. This
// prevents lookahead: a 5m candle at 12:05 may see the 1h candle closed at
// 12:00, never the one still forming.
func AlignHigherTimeframe(htf []*Candle, primaryOpen time.Time) []*Candle {
	cut := len(htf)
	for cut > 0 && htf[cut-1].CloseTime.After(primaryOpen) {
		cut--
	}
	return htf[:cut]
}

// TrimForming drops the trailing candle of a REST snapshot when its interval
// has not yet closed at the given time. The klines endpoint always includes
// the candle still forming at the moment of the call; leaving it in a window
// would later collide with the closed version of the same candle from the
// stream.
func TrimForming(candles []*Candle, now time.Time) []*Candle {
	if n := len(candles); n > 0 && candles[n-1].CloseTime.After(now) {
		return candles[:n-1]
	}
	return candles
}

// AppendToWindow extends a rolling window with a new candle, replacing the
// tail when the open times match (a re-delivered or corrected candle) and
// trimming the front to keep at most max entries.
func AppendToWindow(window []*Candle, candle *Candle, max int) []*Candle {
	if n := len(window); n > 0 && window[n-1].OpenTime.Equal(candle.OpenTime) {
		window[n-1] = candle
	} else {
		window = append(window, candle)
	}
	if len(window) > max {
		window = window[len(window)-max:]
	}
	return window
}
