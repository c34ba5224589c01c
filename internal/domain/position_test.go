package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPosition_Profit(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		entry     float64
		price     float64
		expected  float64
	}{
		{name: "long gain", direction: Buy, entry: 2000, price: 2100, expected: 0.05},
		{name: "long loss", direction: Buy, entry: 2000, price: 1900, expected: -0.05},
		{name: "short gain", direction: Sell, entry: 2000, price: 1900, expected: 0.05},
		{name: "short loss", direction: Sell, entry: 2000, price: 2100, expected: -0.05},
		{name: "flat", direction: Buy, entry: 2000, price: 2000, expected: 0},
		{name: "zero entry price", direction: Buy, entry: 0, price: 2000, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Position{Direction: tt.direction, EntryPrice: tt.entry}
			assert.InDelta(t, tt.expected, p.Profit(tt.price), 1e-9)
		})
	}
}

func TestPosition_IsOpen(t *testing.T) {
	p := &Position{Status: StatusOpen}
	assert.True(t, p.IsOpen())
	p.Status = StatusClosed
	assert.False(t, p.IsOpen())
}

func TestTrade_Duration(t *testing.T) {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	trade := &Trade{EntryTime: entry, ExitTime: entry.Add(95 * time.Minute)}
	assert.Equal(t, 95*time.Minute, trade.Duration())
}

func TestSignal_IsDirectional(t *testing.T) {
	assert.True(t, Signal{Direction: Buy}.IsDirectional())
	assert.True(t, Signal{Direction: Sell}.IsDirectional())
	assert.False(t, Signal{Direction: Hold}.IsDirectional())
	assert.False(t, HoldSignal().IsDirectional())
}
