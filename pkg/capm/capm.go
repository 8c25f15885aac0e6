// Package capm provides cost-of-capital calculations: CAPM cost of equity
// and the weighted average cost of capital. All rates are in percentage
// points, matching the industry benchmark dataset and the HTTP API.
package capm

import (
	"fmt"

	"github.com/iwvelando/capital-lab/pkg/constants"
)

// Inputs collects everything the WACC calculation needs. CostOfEquity may be
// supplied directly or derived from the CAPM fields via Resolve.
type Inputs struct {
	CostOfEquity  float64
	CostOfDebt    float64
	TaxRate       float64
	DebtRatio     float64 // D/(D+E), percent
	RiskFree      float64
	Beta          float64
	EquityPremium float64
	UseCAPM       bool
}

// Result reports the WACC alongside the intermediate rates it was built from.
type Result struct {
	WACC               float64
	CostOfEquity       float64
	AfterTaxCostOfDebt float64
}

// CostOfEquity applies the capital asset pricing model: the risk-free rate
// plus beta times the equity risk premium.
func CostOfEquity(riskFree, beta, equityPremium float64) float64 {
	return riskFree + beta*equityPremium
}

// WACC computes the weighted average cost of capital from the cost of equity,
// the pre-tax cost of debt, the tax rate, and the debt ratio D/(D+E). The
// debt ratio weights the after-tax cost of debt; the remainder weights the
// cost of equity.
func WACC(costOfEquity, costOfDebt, taxRate, debtRatio float64) (Result, error) {
	if debtRatio < 0 || debtRatio > constants.DebtAxisMax {
		return Result{}, fmt.Errorf("debt ratio must be between 0 and %v percent, got %v",
			constants.DebtAxisMax, debtRatio)
	}
	if taxRate < 0 || taxRate >= constants.PercentageMultiplier {
		return Result{}, fmt.Errorf("tax rate must be at least 0 and below 100 percent, got %v", taxRate)
	}

	debtWeight := debtRatio / constants.PercentageMultiplier
	equityWeight := 1 - debtWeight
	afterTaxDebt := costOfDebt * (1 - taxRate/constants.PercentageMultiplier)

	return Result{
		WACC:               equityWeight*costOfEquity + debtWeight*afterTaxDebt,
		CostOfEquity:       costOfEquity,
		AfterTaxCostOfDebt: afterTaxDebt,
	}, nil
}

// Compute resolves the cost of equity (CAPM when requested) and returns the
// WACC result.
func Compute(in Inputs) (Result, error) {
	costOfEquity := in.CostOfEquity
	if in.UseCAPM {
		if in.Beta < 0 {
			return Result{}, fmt.Errorf("beta must be at least 0, got %v", in.Beta)
		}
		costOfEquity = CostOfEquity(in.RiskFree, in.Beta, in.EquityPremium)
	}
	return WACC(costOfEquity, in.CostOfDebt, in.TaxRate, in.DebtRatio)
}
