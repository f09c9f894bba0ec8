package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVColumns is the expected header of a readings file. Columns are matched by name,
// case-insensitively, so their order does not matter.
var CSVColumns = []string{"Nerve", "Type", "DistalLatency", "PeakLatency", "Amplitude", "Velocity"}

// ParseReadingsCSV reads nerve readings from a CSV file, one row per nerve.
func ParseReadingsCSV(filepath string) ([]NerveReading, []string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadReadingsCSV(file)
}

// ReadReadingsCSV is ParseReadingsCSV over an arbitrary reader. Rows that cannot be used
// are reported in the returned warnings and skipped; only an unreadable stream or a
// header without a Nerve column is an error.
func ReadReadingsCSV(r io.Reader) ([]NerveReading, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	return readingsFromRows(allRows)
}

// readingsFromRows turns a header row plus data rows into readings. Row numbers in
// warnings are 1-based positions in rows.
func readingsFromRows(allRows [][]string) ([]NerveReading, []string, error) {
	var warnings []string
	readings := make([]NerveReading, 0, len(allRows))
	colIndex := map[string]int{}

	for rowIdx, row := range allRows {
		if isBlankRow(row) {
			continue
		}

		if len(colIndex) == 0 {
			for i, name := range row {
				colIndex[strings.ToLower(strings.TrimSpace(name))] = i
			}
			if _, ok := colIndex["nerve"]; !ok {
				return nil, warnings, fmt.Errorf("header (row %d) has no Nerve column, want %s", rowIdx+1, strings.Join(CSVColumns, ","))
			}
			continue
		}

		cell := func(col string) string {
			i, ok := colIndex[strings.ToLower(col)]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		name := strings.TrimSpace(cell("Nerve"))
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("Warning: row %d has no nerve name, skipped.", rowIdx+1))
			continue
		}

		reading := NerveReading{
			NerveName:     name,
			Type:          ParseNerveType(cell("Type")),
			DistalLatency: ParseField(cell("DistalLatency")),
			PeakLatency:   ParseField(cell("PeakLatency")),
			Amplitude:     ParseField(cell("Amplitude")),
			Velocity:      ParseField(cell("Velocity")),
		}
		warnings = append(warnings, unreadableCells(rowIdx+1, name, map[string]string{
			"DistalLatency": cell("DistalLatency"),
			"PeakLatency":   cell("PeakLatency"),
			"Amplitude":     cell("Amplitude"),
			"Velocity":      cell("Velocity"),
		})...)
		readings = append(readings, reading)
	}

	if len(colIndex) == 0 {
		warnings = append(warnings, "Warning: file is empty, no readings parsed.")
	}
	return readings, warnings, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// unreadableCells lists non-empty cells that did not parse to a measurement or NR.
// They are scored as not measured, which a user usually wants to know about. Zero is
// the usual way to leave a cell blank and is not reported.
func unreadableCells(row int, nerve string, cells map[string]string) []string {
	var out []string
	for _, col := range CSVColumns[2:] {
		raw := strings.TrimSpace(cells[col])
		if raw == "" || !ParseField(raw).IsMissing() {
			continue
		}
		v, isNumber := leadingNumber(raw)
		switch {
		case isNumber && v == 0:
		case isNumber:
			out = append(out, fmt.Sprintf("Warning: row %d, %s %s value %q is negative; treated as not measured.", row, nerve, col, raw))
		default:
			out = append(out, fmt.Sprintf("Warning: row %d, %s %s value %q is not a number or NR; treated as not measured.", row, nerve, col, raw))
		}
	}
	return out
}
