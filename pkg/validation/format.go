// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/capital-lab/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateSearchRangePercent checks search bounds expressed in percentage
// points, the units used by configuration and the HTTP API.
func ValidateSearchRangePercent(minPercent, maxPercent float64) error {
	if minPercent < 0 {
		return fmt.Errorf("search range minimum must be at least 0%%, got %v%%", minPercent)
	}
	if minPercent >= maxPercent {
		return fmt.Errorf("search range minimum %v%% must be below maximum %v%%", minPercent, maxPercent)
	}
	return nil
}
