// Package dataset loads and holds the industry cost-of-capital benchmark
// table. The canonical source is Damodaran's wacc.csv; when it is
// unreachable a configured local file is tried, and a small built-in sample
// keeps the application usable offline.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Industry is one cleaned row of the benchmark table. DebtPct is D/(D+E)
// and WACC is the cost of capital, both in percentage points.
type Industry struct {
	Name    string  `json:"name"`
	DebtPct float64 `json:"debtPct"`
	Beta    float64 `json:"beta"`
	WACC    float64 `json:"wacc"`
}

// Required column headers of the raw CSV.
const (
	columnName = "Industry Name"
	columnBeta = "Beta"
	columnWACC = "Cost of Capital"
	columnDebt = "D/(D+E)"
)

// ParseCSV reads the raw benchmark CSV and returns the cleaned rows. The
// four required columns are located by header name; numeric text may carry
// "%" suffixes and thousands separators. Rows with any unparseable value
// are dropped rather than failing the whole table, matching how the raw
// Damodaran file mixes data rows with footnotes.
func ParseCSV(r io.Reader) ([]Industry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{columnName, columnBeta, columnWACC, columnDebt} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	var industries []Industry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		name := field(record, index[columnName])
		if name == "" {
			continue
		}
		beta, err := parseNumber(field(record, index[columnBeta]))
		if err != nil {
			continue
		}
		wacc, err := parseNumber(field(record, index[columnWACC]))
		if err != nil {
			continue
		}
		debt, err := parseNumber(field(record, index[columnDebt]))
		if err != nil {
			continue
		}

		industries = append(industries, Industry{
			Name:    name,
			DebtPct: debt,
			Beta:    beta,
			WACC:    wacc,
		})
	}

	if len(industries) == 0 {
		return nil, fmt.Errorf("CSV contained no usable rows")
	}
	return industries, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseNumber strips "%" suffixes and thousands separators before parsing.
func parseNumber(text string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(text, "%", ""), ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// Sample returns the built-in fallback table used when neither the remote
// dataset nor a local file is available.
func Sample() []Industry {
	return []Industry{
		{Name: "Advertising", DebtPct: 18.55, Beta: 1.51, WACC: 8.79},
		{Name: "Aerospace/Defense", DebtPct: 22.29, Beta: 1.18, WACC: 7.77},
		{Name: "Air Transport", DebtPct: 37.06, Beta: 1.44, WACC: 8.77},
		{Name: "Alcoholic Beverages", DebtPct: 16.24, Beta: 0.74, WACC: 6.14},
		{Name: "Auto & Truck", DebtPct: 26.49, Beta: 1.19, WACC: 7.83},
		{Name: "Bank (Money Center)", DebtPct: 86.93, Beta: 1.33, WACC: 8.38},
	}
}
