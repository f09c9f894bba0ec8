package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/dpn_scorer_go/internal/analysis"
	"github.com/user/dpn_scorer_go/internal/parser"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

var reportDate = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleCase() (parser.PatientData, []parser.NerveReading, *analysis.AnalysisResult) {
	patient := parser.PatientData{Name: "Jane Doe", Age: 45, Height: 170, Weight: 68, Symptoms: parser.SymptomFeetLegs}
	readings := parser.DefaultReadings()
	readings[0].Velocity = parser.Measured(30)
	readings[0].Amplitude = parser.Measured(11)
	readings[1].Velocity = parser.Measured(44)
	readings[3].PeakLatency = parser.NotRecordable()
	readings[3].Amplitude = parser.Measured(12)
	return patient, readings, analysis.RunFullAnalysis(readings, patient)
}

func TestWriteTextReport(t *testing.T) {
	patient, readings, result := sampleCase()

	var buf bytes.Buffer
	require.NoError(t, WriteTextReport(&buf, patient, readings, result, reportDate))
	out := buf.String()

	for _, want := range []string{
		"NERVE CONDUCTION REPORT - DIABETIC POLYNEUROPATHY STAGING",
		"Date: 2024-03-14",
		"Name: Jane Doe",
		"Age: 45 years",
		"Symptoms: Signs of polyneuropathy in feet or legs",
		"Nerve: Sural (Sensory) (Sensory)",
		"  - Peak latency: NR",
		"  - Velocity: -",
		"SCORE #2 (CONDUCTION): 4 / 8 PTS (ABNORMAL)",
		"  - Tibial (Motor): 30 (P0.0) -> 2 pt",
		"  - Fibular (Motor): 44 (P50.0) -> 0 pt",
		"  - Sural (Latency): NR (NR) -> 2 pt",
		"SCORE #4 (AMPLITUDE): 0 / 8 PTS (NORMAL)",
		"FINAL SEVERITY CLASSIFICATION:",
		"N2: Abnormal score #2 with signs in feet or legs",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "(no observations)")
}

func TestWriteTextReport_NoObservations(t *testing.T) {
	patient := parser.PatientData{Age: 30, Height: 160}
	result := analysis.RunFullAnalysis(nil, patient)

	var buf bytes.Buffer
	require.NoError(t, WriteTextReport(&buf, patient, nil, result, reportDate))
	assert.Equal(t, 2, strings.Count(buf.String(), "(no observations)"))
	assert.NotContains(t, buf.String(), "Name:")
	assert.Contains(t, buf.String(), "N0: No abnormalities in nerve conduction")
}

func TestWriteJSON(t *testing.T) {
	_, _, result := sampleCase()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, result))

	var decoded struct {
		Severity string `json:"severity"`
		Score2   struct {
			Total      int  `json:"total"`
			IsAbnormal bool `json:"isAbnormal"`
			Details    []struct {
				Nerve     string          `json:"nerve"`
				Value     json.RawMessage `json:"value"`
				UpperTail bool            `json:"upperTail"`
			} `json:"details"`
		} `json:"score2"`
		Score4 struct {
			Details []json.RawMessage `json:"details"`
		} `json:"score4"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "N2", decoded.Severity)
	assert.Equal(t, 4, decoded.Score2.Total)
	assert.True(t, decoded.Score2.IsAbnormal)
	require.Len(t, decoded.Score2.Details, 3)
	assert.JSONEq(t, "30", string(decoded.Score2.Details[0].Value))
	assert.JSONEq(t, `"NR"`, string(decoded.Score2.Details[2].Value))
	assert.True(t, decoded.Score2.Details[2].UpperTail)
	assert.Len(t, decoded.Score4.Details, 2)
}

func TestWriteJSON_EmptyDetailsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, analysis.RunFullAnalysis(nil, parser.PatientData{})))
	assert.Contains(t, buf.String(), `"details": []`)
	assert.NotContains(t, buf.String(), "null")
}

func TestFormatPercentile(t *testing.T) {
	assert.Equal(t, "NR", FormatPercentile(analysis.ScoreDetail{Value: parser.NotRecordable(), Percentile: 0.001}))
	assert.Equal(t, "P3.6", FormatPercentile(analysis.ScoreDetail{Value: parser.Measured(52), Percentile: 0.0359}))
}

func TestTextReportFilename(t *testing.T) {
	assert.Equal(t, "NCS_Report_2024-03-14.txt", TextReportFilename(reportDate))
}

func TestCreatePercentilePlot(t *testing.T) {
	_, _, result := sampleCase()

	for _, family := range []string{"score2", "score4"} {
		img, err := CreatePercentilePlot(result, family)
		require.NoError(t, err, family)
		assert.True(t, bytes.HasPrefix(img, pngMagic), family)
	}

	_, err := CreatePercentilePlot(result, "score3")
	assert.Error(t, err)
	_, err = CreatePercentilePlot(nil, "score2")
	assert.Error(t, err)
	_, err = CreatePercentilePlot(analysis.RunFullAnalysis(nil, parser.PatientData{}), "score2")
	assert.Error(t, err)
}

func TestNewPointsGrid(t *testing.T) {
	_, _, result := sampleCase()
	g := newPointsGrid(result)

	assert.Equal(t, []string{"Tibial", "Fibular", "Sural"}, g.nerves)
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 3, r)

	assert.Equal(t, 2.0, g.Z(0, 0))
	assert.Equal(t, 0.0, g.Z(0, 1))
	assert.True(t, math.IsNaN(g.Z(1, 1)), "fibular amplitude was not measured")
	assert.Equal(t, 2.0, g.Z(0, 2))
	assert.Equal(t, 0.0, g.Z(1, 2))
}

func TestNewPointsGrid_RowsFirstSeenInEitherFamily(t *testing.T) {
	result := &analysis.AnalysisResult{
		Score2: analysis.Score{Details: []analysis.ScoreDetail{
			{Nerve: "Tibial (Motor)", Points: 1},
		}},
		Score4: analysis.Score{Details: []analysis.ScoreDetail{
			{Nerve: "Ulnar (Motor)", Points: 2},
			{Nerve: "Sural (Sensory)", Points: 0},
			{Nerve: "Tibial (Motor)", Points: 2},
		}},
	}
	g := newPointsGrid(result)

	require.Equal(t, []string{"Tibial", "Ulnar", "Sural"}, g.nerves)
	require.Len(t, g.z, 3)
	assert.Equal(t, [2]float64{1, 2}, g.z[0])
	assert.True(t, math.IsNaN(g.z[1][0]))
	assert.Equal(t, 2.0, g.z[1][1])
	assert.True(t, math.IsNaN(g.z[2][0]))
	assert.Equal(t, 0.0, g.z[2][1])
}

func TestCreatePercentilePlot_UpperTailThresholds(t *testing.T) {
	result := analysis.RunFullAnalysis([]parser.NerveReading{
		{NerveName: "Sural (Sensory)", Type: parser.Sensory, PeakLatency: parser.Measured(4.5)},
	}, parser.PatientData{Age: 45, Height: 170})
	require.True(t, result.Score2.Details[0].UpperTail)

	img, err := CreatePercentilePlot(result, "score2")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestCreatePointsHeatmap(t *testing.T) {
	_, _, result := sampleCase()
	img, err := CreatePointsHeatmap(result)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreatePointsHeatmap(nil)
	assert.Error(t, err)
	_, err = CreatePointsHeatmap(analysis.RunFullAnalysis(nil, parser.PatientData{}))
	assert.Error(t, err)
}

func TestWritePDFReport(t *testing.T) {
	patient, readings, result := sampleCase()
	heatmap, err := CreatePointsHeatmap(result)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WritePDFReport(&buf, patient, readings, result, map[string][]byte{PlotHeatmap: heatmap}, reportDate)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.Error(t, WritePDFReport(&buf, patient, readings, nil, nil, reportDate))
}

func TestBuildPDFReport(t *testing.T) {
	patient, readings, result := sampleCase()
	path := filepath.Join(t.TempDir(), "report.pdf")

	require.NoError(t, BuildPDFReport(path, patient, readings, result, nil, reportDate))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestReferenceLimits(t *testing.T) {
	_, _, result := sampleCase()
	patient := parser.PatientData{Age: 45, Height: 170}

	assert.Equal(t, ">= 37.0", conductionLimit(result.Score2.Details[0], patient))
	assert.Equal(t, "<= 4.4", conductionLimit(result.Score2.Details[2], patient))
	assert.Equal(t, ">= 3.9", amplitudeLimit(result.Score4.Details[0], patient))
	assert.Equal(t, "-", amplitudeLimit(analysis.ScoreDetail{Nerve: "Median"}, patient))
}
