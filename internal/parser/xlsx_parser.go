package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseReadingsXLSX reads nerve readings from the first sheet of an Excel workbook laid
// out like the CSV format: a header row naming the CSVColumns, then one row per nerve.
func ParseReadingsXLSX(filepath string) ([]NerveReading, []string, error) {
	f, err := excelize.OpenFile(filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	return readingsFromWorkbook(f)
}

// ReadReadingsXLSX is ParseReadingsXLSX over an arbitrary reader.
func ReadReadingsXLSX(r io.Reader) ([]NerveReading, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel data: %w", err)
	}
	defer f.Close()

	return readingsFromWorkbook(f)
}

func readingsFromWorkbook(f *excelize.File) ([]NerveReading, []string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return readingsFromRows(rows)
}
