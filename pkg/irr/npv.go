// Package irr finds internal rates of return: the discount rates at which a
// cash flow series has zero net present value. Cash flow patterns with more
// than one sign change can have several real roots, so the solver reports
// every root it can bracket in the search range rather than assuming one.
package irr

import "fmt"

// DomainError indicates an NPV evaluation at a rate of -100% or below, where
// the discount factor is undefined.
type DomainError struct {
	Rate float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("rate %v is at or below -100%%; NPV is undefined", e.Rate)
}

// series is the minimal view of a cash flow series the evaluator needs. The
// concrete type is cashflow.Series; the solver never mutates it.
type series interface {
	Len() int
	At(t int) float64
}

// NPV returns the net present value of the series discounted at the given
// decimal rate: the sum of cashFlow[t] / (1+rate)^t over all periods.
func NPV(s series, rate float64) (float64, error) {
	if rate <= -1 {
		return 0, &DomainError{Rate: rate}
	}
	return npv(s, rate), nil
}

// Derivative returns dNPV/drate at the given decimal rate, used by the
// Newton cross-check.
func Derivative(s series, rate float64) (float64, error) {
	if rate <= -1 {
		return 0, &DomainError{Rate: rate}
	}
	return derivative(s, rate), nil
}

// npv assumes rate > -1; callers validate first.
func npv(s series, rate float64) float64 {
	base := 1 + rate
	discount := 1.0
	total := 0.0
	for t := 0; t < s.Len(); t++ {
		if t > 0 {
			discount *= base
		}
		total += s.At(t) / discount
	}
	return total
}

// derivative assumes rate > -1. Each term of the NPV sum differentiates to
// -t * cashFlow[t] / (1+rate)^(t+1); the t=0 term is constant and drops out.
func derivative(s series, rate float64) float64 {
	base := 1 + rate
	discount := base
	total := 0.0
	for t := 1; t < s.Len(); t++ {
		discount *= base
		total -= float64(t) * s.At(t) / discount
	}
	return total
}
