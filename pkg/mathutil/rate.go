package mathutil

import "github.com/iwvelando/capital-lab/pkg/constants"

// PercentToDecimal converts a rate expressed in percentage points to a decimal
// rate (10 -> 0.10). Configuration and the HTTP API speak percent; the solver
// works in decimal.
func PercentToDecimal(pct float64) float64 {
	return pct / constants.PercentageMultiplier
}

// DecimalToPercent converts a decimal rate to percentage points (0.10 -> 10).
func DecimalToPercent(rate float64) float64 {
	return rate * constants.PercentageMultiplier
}
