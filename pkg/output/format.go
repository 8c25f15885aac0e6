// Package output provides utilities for formatting and displaying solve results.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/capital-lab/pkg/cashflow"
	"github.com/iwvelando/capital-lab/pkg/irr"
	"github.com/iwvelando/capital-lab/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report bundles one solve with its display context.
type Report struct {
	Series               cashflow.Series
	Result               irr.Result
	ReferenceRatePercent float64
	ReferenceNPV         float64
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(report Report) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- IRR results for cash flows %s ---\n", report.Series.String())
	fmt.Printf("Sign changes: %d\n", report.Result.SignChanges)

	if len(report.Result.Roots) == 0 {
		fmt.Printf("No valid IRR in the selected range.\n")
	} else {
		fmt.Printf("IRR (%%)  | NPV at root\n")
		fmt.Printf("_______  | ___________\n")
		for _, root := range report.Result.Roots {
			npv, err := irr.NPV(report.Series, root)
			if err != nil {
				continue
			}
			_, _ = p.Printf("%.4f | $%.2f\n", mathutil.DecimalToPercent(root), npv)
		}
	}

	_, _ = p.Printf("NPV at %.2f%%: $%.2f\n", report.ReferenceRatePercent, report.ReferenceNPV)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(report Report) {
	fmt.Print(CsvString(report))
}

// CsvString renders the CSV output as a string for the HTTP API.
func CsvString(report Report) string {
	var b strings.Builder
	b.WriteString(`"irr (%)","npv at root","sign changes"`)
	b.WriteString("\n")
	for _, root := range report.Result.Roots {
		npv, err := irr.NPV(report.Series, root)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, `"%.4f","%.2f","%d"`, mathutil.DecimalToPercent(root), npv, report.Result.SignChanges)
		b.WriteString("\n")
	}
	if len(report.Result.Roots) == 0 {
		fmt.Fprintf(&b, `"","","%d"`, report.Result.SignChanges)
		b.WriteString("\n")
	}
	return b.String()
}
