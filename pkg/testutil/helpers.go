// Package testutil provides common utility functions for testing.
package testutil

import "math"

// ApproxEqual reports whether two values agree within the given tolerance.
func ApproxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// RatesApproxEqual compares two sorted rate slices element by element.
func RatesApproxEqual(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ApproxEqual(a[i], b[i], tolerance) {
			return false
		}
	}
	return true
}
