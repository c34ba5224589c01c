package domain

import "time"

// Trade represents a completed simulated trade produced by the replay harness.
type Trade struct {
	Symbol      string
	Direction   Direction
	EntryPrice  float64
	ExitPrice   float64
	Leverage    float64
	Return      float64 // leveraged fractional return of the trade
	EntryTime   time.Time
	ExitTime    time.Time
	CloseReason CloseReason
}

// Duration returns how long the position was held.
func (t *Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
