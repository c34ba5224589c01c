package risk

import "fmt"

// TrailingStop manages the stoploss fraction of an open position. It starts
// at the stoploss attached to the entry signal and, once the peak favorable
// excursion reaches the activation threshold, trails that peak at a fixed
// distance. The stop only ever tightens (moves toward zero loss); adverse
// price moves never loosen it.
type TrailingStop struct {
	activation float64 // profit fraction at which trailing starts
	distance   float64 // gap kept between peak profit and the stop
	peak       float64 // best profit fraction seen so far
	current    float64 // current stoploss fraction (negative or zero)
}

// NewTrailingStop creates a trailing stop seeded with the entry stoploss.
func NewTrailingStop(initialStop, activation, distance float64) (*TrailingStop, error) {
	if initialStop >= 0 {
		return nil, fmt.Errorf("initial stoploss must be negative, got %f", initialStop)
	}
	if activation <= 0 {
		return nil, fmt.Errorf("trailing activation must be positive, got %f", activation)
	}
	if distance <= 0 {
		return nil, fmt.Errorf("trailing distance must be positive, got %f", distance)
	}
	return &TrailingStop{
		activation: activation,
		distance:   distance,
		current:    initialStop,
	}, nil
}

// Update feeds the current profit fraction of the position and returns the
// (possibly tightened) stoploss fraction. The returned value is capped at
// zero: the stop may reach breakeven but never locks in a gain, since a
// stoploss expresses loss tolerance relative to entry.
func (t *TrailingStop) Update(profit float64) float64 {
	if profit > t.peak {
		t.peak = profit
	}
	if t.peak >= t.activation {
		candidate := t.peak - t.distance
		if candidate > 0 {
			candidate = 0
		}
		if candidate > t.current {
			t.current = candidate
		}
	}
	return t.current
}

// Stoploss returns the current stoploss fraction without updating it.
func (t *TrailingStop) Stoploss() float64 {
	return t.current
}

// Active reports whether trailing has been activated by a sufficient
// favorable excursion.
func (t *TrailingStop) Active() bool {
	return t.peak >= t.activation
}
