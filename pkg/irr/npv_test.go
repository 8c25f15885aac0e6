package irr

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/capital-lab/pkg/cashflow"
)

func mustSeries(t *testing.T, flows []float64) cashflow.Series {
	t.Helper()
	s, err := cashflow.New(flows)
	if err != nil {
		t.Fatalf("failed to build series: %v", err)
	}
	return s
}

func TestNPV(t *testing.T) {
	tests := []struct {
		name     string
		flows    []float64
		rate     float64
		expected float64
	}{
		{
			name:     "conventional project at 10 percent",
			flows:    []float64{-1000, 300, 400, 500, 600},
			rate:     0.10,
			expected: 388.77,
		},
		{
			name:     "zero rate is the plain sum",
			flows:    []float64{-1000, 300, 400, 500, 600},
			rate:     0,
			expected: 800,
		},
		{
			name:     "single period ignores the rate",
			flows:    []float64{-500},
			rate:     0.25,
			expected: -500,
		},
		{
			name:     "all-zero series",
			flows:    []float64{0, 0, 0},
			rate:     0.10,
			expected: 0,
		},
		{
			name:     "two sign changes at 25 percent",
			flows:    []float64{-1000, 2500, -1560},
			rate:     0.25,
			expected: 1.60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSeries(t, tt.flows)
			got, err := NPV(s, tt.rate)
			if err != nil {
				t.Fatalf("NPV returned error: %v", err)
			}
			if math.Abs(got-tt.expected) > 0.01 {
				t.Errorf("NPV = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestNPVDomainError(t *testing.T) {
	s := mustSeries(t, []float64{-1000, 500})

	for _, rate := range []float64{-1, -1.5, -2} {
		_, err := NPV(s, rate)
		if err == nil {
			t.Fatalf("expected domain error for rate %v", rate)
		}
		var domainErr *DomainError
		if !errors.As(err, &domainErr) {
			t.Fatalf("expected *DomainError, got %T", err)
		}
		if domainErr.Rate != rate {
			t.Errorf("DomainError.Rate = %v, expected %v", domainErr.Rate, rate)
		}
	}

	if _, err := Derivative(s, -1); err == nil {
		t.Error("expected domain error from Derivative at rate -1")
	}
}

func TestNPVNeverNonFinite(t *testing.T) {
	s := mustSeries(t, []float64{-1000, 300, 400, 500, 600})

	// Rates arbitrarily close to -1 from above stay finite; the guard only
	// has to reject the undefined side.
	for _, rate := range []float64{-0.999, 0, 123456} {
		got, err := NPV(s, rate)
		if err != nil {
			t.Fatalf("NPV(%v) returned error: %v", rate, err)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("NPV(%v) = %v, expected a finite value", rate, got)
		}
	}
}

func TestDerivative(t *testing.T) {
	s := mustSeries(t, []float64{-1000, 300, 400, 500, 600})

	// Compare against a central finite difference.
	rate := 0.10
	h := 1e-7
	upper, err := NPV(s, rate+h)
	if err != nil {
		t.Fatalf("NPV returned error: %v", err)
	}
	lower, err := NPV(s, rate-h)
	if err != nil {
		t.Fatalf("NPV returned error: %v", err)
	}
	numeric := (upper - lower) / (2 * h)

	analytic, err := Derivative(s, rate)
	if err != nil {
		t.Fatalf("Derivative returned error: %v", err)
	}
	if math.Abs(analytic-numeric) > 1e-3 {
		t.Errorf("Derivative = %v, finite difference = %v", analytic, numeric)
	}
	if analytic >= 0 {
		t.Errorf("expected a negative slope for a conventional project, got %v", analytic)
	}
}
