package domain

import "time"

// Position represents a simulated position opened from a directional signal.
// The live framework keeps its own position bookkeeping; this type only
// exists so the replay harness can exercise stoploss and trailing behaviour.
type Position struct {
	Symbol      string
	Direction   Direction // Buy for long, Sell for short
	EntryPrice  float64
	ExitPrice   float64 // 0 while open
	Leverage    float64 // multiplier attached to the entry signal
	Stoploss    float64 // current stoploss fraction (negative, may tighten)
	EntryTime   time.Time
	ExitTime    time.Time
	Status      PositionStatus
	CloseReason CloseReason
}

// IsOpen checks if the position status is open.
func (p *Position) IsOpen() bool {
	return p.Status == StatusOpen
}

// Profit returns the unleveraged fractional return at the given price.
// Positive means the price moved in the position's favour.
func (p *Position) Profit(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	r := (price - p.EntryPrice) / p.EntryPrice
	if p.Direction == Sell {
		return -r
	}
	return r
}
