package risk

import (
	"fmt"
	"sort"
	"time"
)

// ROIStep defines a minimal take-profit target that applies once a position
// has been held for at least After.
type ROIStep struct {
	After     time.Duration
	MinProfit float64
}

// ROITable is a time-laddered set of take-profit targets: the longer a
// position is held, the smaller the profit needed to close it.
type ROITable struct {
	steps []ROIStep
}

// NewROITable builds a table from steps. There must be a step at zero so a
// target exists from the moment a position opens, and targets must shrink as
// the holding time grows.
func NewROITable(steps []ROIStep) (*ROITable, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("ROI table needs at least one step")
	}
	sorted := make([]ROIStep, len(steps))
	copy(sorted, steps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After < sorted[j].After })

	if sorted[0].After != 0 {
		return nil, fmt.Errorf("ROI table must start at duration zero")
	}
	for i, s := range sorted {
		if s.MinProfit <= 0 {
			return nil, fmt.Errorf("ROI target at %s must be positive, got %f", s.After, s.MinProfit)
		}
		if i > 0 {
			if s.After == sorted[i-1].After {
				return nil, fmt.Errorf("duplicate ROI step at %s", s.After)
			}
			if s.MinProfit >= sorted[i-1].MinProfit {
				return nil, fmt.Errorf("ROI targets must decrease over time: %f at %s follows %f",
					s.MinProfit, s.After, sorted[i-1].MinProfit)
			}
		}
	}
	return &ROITable{steps: sorted}, nil
}

// DefaultROITable returns the 3% / 1.5% / 1% ladder at 0, 60 and 120 minutes.
func DefaultROITable() *ROITable {
	t, err := NewROITable([]ROIStep{
		{After: 0, MinProfit: 0.03},
		{After: 60 * time.Minute, MinProfit: 0.015},
		{After: 120 * time.Minute, MinProfit: 0.01},
	})
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return t
}

// Target returns the minimal profit target for a position held for the given
// duration.
func (t *ROITable) Target(held time.Duration) float64 {
	target := t.steps[0].MinProfit
	for _, s := range t.steps {
		if held >= s.After {
			target = s.MinProfit
		}
	}
	return target
}

// Reached reports whether the profit fraction satisfies the target for the
// given holding duration.
func (t *ROITable) Reached(held time.Duration, profit float64) bool {
	return profit >= t.Target(held)
}
