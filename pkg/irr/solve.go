package irr

import (
	"fmt"
	"math"
	"sort"

	"github.com/iwvelando/capital-lab/pkg/constants"
	"github.com/iwvelando/capital-lab/pkg/mathutil"
)

// SearchRange bounds the discount-rate domain the solver scans, in decimal
// rate units (0.10 = 10%).
type SearchRange struct {
	Min       float64
	Max       float64
	Precision float64
	Samples   int
}

// CurvePoint is one probe of the NPV curve, reported so callers can plot it.
type CurvePoint struct {
	Rate float64
	NPV  float64
}

// Result holds everything one solve produces. Roots is sorted ascending and
// deduplicated; SignChanges is informational and never limits the root list.
type Result struct {
	Roots       []float64
	SignChanges int
	Curve       []CurvePoint
}

// DefaultSearchRange covers 0% to 50% at the default resolution.
func DefaultSearchRange() SearchRange {
	return SearchRange{
		Min:       constants.DefaultSearchMin,
		Max:       constants.DefaultSearchMax,
		Precision: constants.DefaultPrecision,
		Samples:   constants.DefaultSampleCount,
	}
}

// Validate normalizes zero-valued Precision and Samples to their defaults and
// rejects ranges the solver cannot scan.
func (r *SearchRange) Validate() error {
	if r.Precision == 0 {
		r.Precision = constants.DefaultPrecision
	}
	if r.Samples == 0 {
		r.Samples = constants.DefaultSampleCount
	}
	if r.Min < 0 {
		return fmt.Errorf("search range minimum must be at least 0, got %v", r.Min)
	}
	if r.Min >= r.Max {
		return fmt.Errorf("search range minimum %v must be below maximum %v", r.Min, r.Max)
	}
	if r.Precision <= 0 {
		return fmt.Errorf("precision must be positive, got %v", r.Precision)
	}
	if r.Samples < constants.MinSampleCount {
		return fmt.Errorf("sample count must be at least %d, got %d", constants.MinSampleCount, r.Samples)
	}
	if r.Samples > constants.MaxSampleCount {
		return fmt.Errorf("sample count must be at most %d, got %d", constants.MaxSampleCount, r.Samples)
	}
	return nil
}

// Solve finds every discount rate in the search range at which the NPV curve
// of the series crosses zero. The scan is two-phase: a dense sweep over
// evenly spaced probe rates brackets sign changes, then each bracket is
// narrowed by bisection down to the range's precision. A root that sits
// between two same-signed probes, such as a tangency that touches zero
// without crossing, is not found; that is a property of the method the
// caller accepts by choosing the sample count.
func Solve(s series, r SearchRange) (Result, error) {
	if err := r.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{
		SignChanges: signChanges(s),
		Curve:       sampleCurve(s, r),
	}

	// Degenerate inputs have no meaningful roots: a single period never
	// crosses zero and an all-zero series is zero everywhere. The curve is
	// still reported for display.
	if s.Len() < 2 || allZero(s) {
		return result, nil
	}

	var raw []float64
	for i := 1; i < len(result.Curve); i++ {
		lo, hi := result.Curve[i-1], result.Curve[i]
		if lo.NPV*hi.NPV <= 0 {
			raw = append(raw, bisect(s, lo.Rate, hi.Rate, r.Precision))
		}
	}

	// Adjacent brackets refine toward the same crossing when a probe lands
	// near zero; keep the first root found and drop later ones inside the
	// dedup tolerance.
	var kept []float64
	for _, root := range raw {
		duplicate := false
		for _, existing := range kept {
			if mathutil.WithinTolerance(root, existing, constants.RootDedupTolerance) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, root)
		}
	}

	// Independent Newton estimate as a supplement. Bisection-derived roots
	// always win ties: the Newton root joins the list only when it is not
	// within the dedup tolerance of any kept root.
	if root, ok := newton(s, r); ok {
		duplicate := false
		for _, existing := range kept {
			if mathutil.WithinTolerance(root, existing, constants.RootDedupTolerance) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, root)
		}
	}

	sort.Float64s(kept)
	result.Roots = kept
	return result, nil
}

// sampleCurve evaluates NPV at Samples evenly spaced rates across the range,
// endpoints included. The range is validated, so every probe rate is >= 0
// and the unexported evaluator applies directly.
func sampleCurve(s series, r SearchRange) []CurvePoint {
	step := (r.Max - r.Min) / float64(r.Samples-1)
	curve := make([]CurvePoint, r.Samples)
	for i := range curve {
		rate := r.Min + float64(i)*step
		if i == r.Samples-1 {
			rate = r.Max
		}
		curve[i] = CurvePoint{Rate: rate, NPV: npv(s, rate)}
	}
	return curve
}

// bisect narrows a bracketing interval to the requested precision and
// returns its midpoint. The sign test is against the lo endpoint: when the
// midpoint is on the opposite side (product <= 0) the root is in the lower
// half, otherwise the upper.
func bisect(s series, lo, hi, precision float64) float64 {
	npvLo := npv(s, lo)
	for hi-lo > precision {
		mid := (lo + hi) / 2
		npvMid := npv(s, mid)
		if npvMid*npvLo <= 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}
	return (lo + hi) / 2
}

// newton runs a damped Newton iteration from the middle of the search range.
// It reports a root only when the iteration converges inside the range to a
// rate whose NPV residual is within tolerance; on a flat derivative or an
// excursion below the -100% domain bound it gives up.
func newton(s series, r SearchRange) (float64, bool) {
	rate := (r.Min + r.Max) / 2
	for i := 0; i < constants.NewtonMaxIterations; i++ {
		value := npv(s, rate)
		if math.Abs(value) <= constants.NPVTolerance {
			if rate < r.Min || rate > r.Max {
				return 0, false
			}
			return rate, true
		}
		slope := derivative(s, rate)
		if math.Abs(slope) < constants.DerivativeThreshold {
			return 0, false
		}
		step := value / slope
		next := rate - step
		for next <= -1 {
			step *= constants.NewtonDampingFactor
			next = rate - step
			if math.Abs(step) < r.Precision {
				return 0, false
			}
		}
		rate = next
	}
	return 0, false
}

func signChanges(s series) int {
	changes := 0
	for t := 0; t+1 < s.Len(); t++ {
		if s.At(t)*s.At(t+1) < 0 {
			changes++
		}
	}
	return changes
}

func allZero(s series) bool {
	for t := 0; t < s.Len(); t++ {
		if s.At(t) != 0 {
			return false
		}
	}
	return true
}
