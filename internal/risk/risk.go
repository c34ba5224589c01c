package risk

// Leverage and stoploss sizing for directional signals. Both take the ATR
// expressed as a fraction of the latest close, which keeps the mapping
// scale-free across symbols.

// LeverageForVolatility maps normalized volatility onto the configured
// leverage range: at or below bandLow the upper bound applies, at or above
// bandHigh the lower bound applies, with linear interpolation in between.
// The result is always clamped to [minLeverage, maxLeverage].
func LeverageForVolatility(atrFraction, bandLow, bandHigh, minLeverage, maxLeverage float64) float64 {
	if bandHigh <= bandLow {
		return minLeverage
	}
	norm := (atrFraction - bandLow) / (bandHigh - bandLow)
	if norm < 0 {
		norm = 0
	} else if norm > 1 {
		norm = 1
	}
	return maxLeverage - norm*(maxLeverage-minLeverage)
}

// StoplossForVolatility returns the stoploss as a negative fractional
// return: the ATR fraction scaled by the configured multiplier.
func StoplossForVolatility(atrFraction, multiplier float64) float64 {
	return -(atrFraction * multiplier)
}
