package parser

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newWorkbook(t *testing.T, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	return f
}

func TestReadReadingsXLSX(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"Nerve", "Type", "DistalLatency", "PeakLatency", "Amplitude", "Velocity"},
		[]interface{}{"Tibial (Motor)", "Motor", 4.1, "", 12.5, 45},
		[]interface{}{"Sural (Sensory)", "Sensory", "", "NR", "4,5", ""},
		[]interface{}{"", "Motor", "", "", 3, 40},
	)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	readings, warnings, err := ReadReadingsXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, NerveReading{
		NerveName:     "Tibial (Motor)",
		Type:          Motor,
		DistalLatency: Measured(4.1),
		Amplitude:     Measured(12.5),
		Velocity:      Measured(45),
	}, readings[0])
	assert.Equal(t, Sensory, readings[1].Type)
	assert.True(t, readings[1].PeakLatency.IsNotRecordable())
	assert.Equal(t, Measured(4.5), readings[1].Amplitude)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "row 4 has no nerve name")
}

func TestParseReadingsXLSX(t *testing.T) {
	f := newWorkbook(t,
		[]interface{}{"Nerve", "Velocity"},
		[]interface{}{"Ulnar (Motor)", 58},
	)
	path := filepath.Join(t.TempDir(), "readings.xlsx")
	require.NoError(t, f.SaveAs(path))

	readings, _, err := ParseReadingsXLSX(path)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, Measured(58), readings[0].Velocity)

	_, _, err = ParseReadingsXLSX(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestReadReadingsXLSX_NotAWorkbook(t *testing.T) {
	_, _, err := ReadReadingsXLSX(bytes.NewReader([]byte("Nerve,Velocity\n")))
	assert.Error(t, err)
}
