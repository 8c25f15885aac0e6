package integration

import (
	"os"
	"testing"
	"time"

	"github.com/iwvelando/capital-lab/pkg/cashflow"
	"github.com/iwvelando/capital-lab/pkg/irr"
)

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestSolvePerformance ensures a default-resolution solve completes fast
// enough to recompute on every UI interaction.
func TestSolvePerformance(t *testing.T) {
	series, err := cashflow.New([]float64{-1000, 300, 400, 500, 600})
	if err != nil {
		t.Fatalf("failed to build series: %v", err)
	}

	start := time.Now()
	if _, err := irr.Solve(series, irr.DefaultSearchRange()); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("default solve took %v, expected well under a second", elapsed)
	}
}

// TestSolvePerformanceMaxSamples exercises the sample-count ceiling.
func TestSolvePerformanceMaxSamples(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping max-resolution solve in short mode")
	}

	series, err := cashflow.New([]float64{-1000, 300, 400, 500, 600})
	if err != nil {
		t.Fatalf("failed to build series: %v", err)
	}

	r := irr.DefaultSearchRange()
	r.Samples = 200000

	start := time.Now()
	if _, err := irr.Solve(series, r); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 10*time.Second {
		t.Errorf("max-resolution solve took %v", elapsed)
	}
}

func BenchmarkSolveDefault(b *testing.B) {
	series, err := cashflow.New([]float64{-1000, 300, 400, 500, 600})
	if err != nil {
		b.Fatalf("failed to build series: %v", err)
	}
	r := irr.DefaultSearchRange()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := irr.Solve(series, r); err != nil {
			b.Fatal(err)
		}
	}
}
