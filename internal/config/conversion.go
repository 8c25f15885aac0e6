// Package config defines conversion utilities for configuration objects.
package config

import (
	"github.com/iwvelando/capital-lab/pkg/cashflow"
	"github.com/iwvelando/capital-lab/pkg/irr"
	"github.com/iwvelando/capital-lab/pkg/mathutil"
)

// Series parses the configured free-text cash flows into a cashflow.Series.
func (c *Configuration) Series() (cashflow.Series, error) {
	return cashflow.Parse(c.CashFlows)
}

// SearchRange converts the percent-unit search settings into the solver's
// decimal-unit SearchRange.
func (c *Configuration) SearchRange() irr.SearchRange {
	return irr.SearchRange{
		Min:       mathutil.PercentToDecimal(c.Search.RateMinPercent),
		Max:       mathutil.PercentToDecimal(c.Search.RateMaxPercent),
		Precision: mathutil.PercentToDecimal(c.Search.PrecisionPercent),
		Samples:   c.Search.Samples,
	}
}

// ReferenceRate returns the NPV display rate in decimal units.
func (c *Configuration) ReferenceRate() float64 {
	return mathutil.PercentToDecimal(c.ReferenceRatePercent)
}
