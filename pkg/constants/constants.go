// Package constants provides shared constants for the capital-lab application.
package constants

// Solver defaults
const (
	// DefaultSampleCount is the number of evenly spaced rates probed across the
	// search range when scanning for sign changes.
	DefaultSampleCount = 10000

	// MaxSampleCount bounds the dense scan so a request cannot ask for an
	// arbitrarily expensive curve.
	MaxSampleCount = 200000

	// MinSampleCount is the smallest scan that can still bracket a root.
	MinSampleCount = 2

	// DefaultPrecision is the bisection interval width, in decimal rate units,
	// at which refinement stops.
	DefaultPrecision = 1e-6

	// RootDedupTolerance is the minimum separation between reported roots, in
	// decimal rate units (0.01 = one percentage point).
	RootDedupTolerance = 0.01

	// DefaultSearchMin and DefaultSearchMax bound the default search range in
	// decimal rate units.
	DefaultSearchMin = 0.0
	DefaultSearchMax = 0.5

	// DefaultReferenceRate is the rate at which the reference NPV is reported,
	// in decimal rate units.
	DefaultReferenceRate = 0.10
)

// Newton cross-check parameters
const (
	// NewtonMaxIterations caps the independent single-root iteration.
	NewtonMaxIterations = 100

	// NewtonDampingFactor scales back steps that would overshoot the range.
	NewtonDampingFactor = 0.5

	// DerivativeThreshold is the smallest derivative magnitude the Newton
	// iteration will divide by.
	DerivativeThreshold = 1e-12

	// NPVTolerance is the residual magnitude below which a candidate rate
	// counts as a root of the NPV curve.
	NPVTolerance = 1e-6
)

// Benchmark axes, matching the Damodaran dataset columns. Game scoring
// normalizes per-axis error by these spans.
const (
	// DebtAxisMax is the upper bound of the debt ratio axis in percent.
	DebtAxisMax = 100.0

	// BetaAxisMax is the upper bound of the beta axis.
	BetaAxisMax = 3.0

	// WACCAxisMax is the upper bound of the cost of capital axis in percent.
	WACCAxisMax = 20.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for dataset CSVs (1 MB)
	DefaultMaxUploadSizeBytes int64 = 1024 * 1024
)

// Dataset defaults
const (
	// DefaultDatasetURL is the Damodaran industry cost-of-capital dataset.
	DefaultDatasetURL = "https://www.stern.nyu.edu/~adamodar/pc/datasets/wacc.csv"

	// DefaultRefreshSchedule re-fetches the remote dataset once a day.
	DefaultRefreshSchedule = "@every 24h"
)

// Validation constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
