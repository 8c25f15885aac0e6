// Package cashflow models a time-indexed series of signed cash flows, the
// input to NPV and IRR calculations. Index i is period i; by convention the
// period-0 entry is the initial investment (typically negative).
package cashflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Series is an immutable ordered sequence of cash flows. The zero value is
// empty and unusable; construct one with New or Parse.
type Series struct {
	flows []float64
}

// ParseError describes a malformed token in free-text cash flow input. The
// position is the 1-based token index as the user would count it.
type ParseError struct {
	Token    string
	Position int
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cash flow entry %d (%q): %v", e.Position, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrEmpty indicates a series with no entries.
var ErrEmpty = errors.New("cash flow series must contain at least one entry")

// New constructs a Series from a slice of period cash flows. The slice is
// copied so later mutation of the argument cannot reach the Series.
func New(flows []float64) (Series, error) {
	if len(flows) == 0 {
		return Series{}, ErrEmpty
	}
	copied := make([]float64, len(flows))
	copy(copied, flows)
	return Series{flows: copied}, nil
}

// Parse builds a Series from comma-separated free text such as
// "-1000, 300, 400, 500, 600". Entries may also be separated by whitespace
// alone. Any token that does not parse as a number fails the whole input;
// the solver never sees partially parsed data.
func Parse(text string) (Series, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return Series{}, ErrEmpty
	}
	flows := make([]float64, 0, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Series{}, &ParseError{Token: field, Position: i + 1, Err: errors.Unwrap(err)}
		}
		flows = append(flows, value)
	}
	return Series{flows: flows}, nil
}

// Len returns the number of periods in the series.
func (s Series) Len() int {
	return len(s.flows)
}

// At returns the cash flow at period t. It panics if t is out of range, the
// same contract as slice indexing.
func (s Series) At(t int) float64 {
	return s.flows[t]
}

// Values returns a copy of the underlying cash flows.
func (s Series) Values() []float64 {
	copied := make([]float64, len(s.flows))
	copy(copied, s.flows)
	return copied
}

// SignChanges counts adjacent pairs whose product is strictly negative. A
// zero entry breaks the count: its neighbors form no strict sign change. The
// count is an upper bound on the number of real IRR roots and is reported
// alongside results; it never feeds back into root finding.
func (s Series) SignChanges() int {
	changes := 0
	for i := 0; i+1 < len(s.flows); i++ {
		if s.flows[i]*s.flows[i+1] < 0 {
			changes++
		}
	}
	return changes
}

// AllZero reports whether every entry is exactly zero. Such a series has an
// identically zero NPV curve and no meaningful roots.
func (s Series) AllZero() bool {
	for _, f := range s.flows {
		if f != 0 {
			return false
		}
	}
	return true
}

// String renders the series in the same comma-separated form Parse accepts.
func (s Series) String() string {
	parts := make([]string, len(s.flows))
	for i, f := range s.flows {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
