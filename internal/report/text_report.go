package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/user/dpn_scorer_go/internal/analysis"
	"github.com/user/dpn_scorer_go/internal/normative"
	"github.com/user/dpn_scorer_go/internal/parser"
)

// MaxScore is the highest total a score family can reach over the four tracked nerves.
const MaxScore = 8

const rule = "=========================================================="

// FormatPercentile renders a percentile as "P12.3", or "NR" for not-recordable values.
func FormatPercentile(d analysis.ScoreDetail) string {
	if d.Value.IsNotRecordable() {
		return parser.NRMarker
	}
	return fmt.Sprintf("P%.1f", d.Percentile*100)
}

// NormalLabel is "ABNORMAL" or "NORMAL".
func NormalLabel(s analysis.Score) string {
	if s.IsAbnormal {
		return "ABNORMAL"
	}
	return "NORMAL"
}

// primaryField picks the score #2 parameter shown for a reading: peak latency for the
// sural nerve, conduction velocity otherwise.
func primaryField(r parser.NerveReading) (string, parser.Field) {
	if normative.IdentifyNerve(r.NerveName) == normative.Sural {
		return "Peak latency", r.PeakLatency
	}
	return "Velocity", r.Velocity
}

func displayField(f parser.Field) string {
	if f.IsMissing() {
		return "-"
	}
	return f.String()
}

// WriteTextReport writes a plain-text transcript of an analysis, in the layout
// clinicians download from the form.
func WriteTextReport(w io.Writer, patient parser.PatientData, readings []parser.NerveReading,
	result *analysis.AnalysisResult, generatedAt time.Time) error {

	bw := bufio.NewWriter(w)
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	p("NERVE CONDUCTION REPORT - DIABETIC POLYNEUROPATHY STAGING")
	p(rule)
	p("Date: %s", generatedAt.Format("2006-01-02"))
	p("")
	p("PATIENT DATA:")
	p("------------------")
	if patient.Name != "" {
		p("Name: %s", patient.Name)
	}
	p("Age: %d years", patient.Age)
	p("Height: %g cm", patient.Height)
	p("Weight: %g kg", patient.Weight)
	p("Symptoms: %s", patient.Symptoms)
	p("")
	p("STUDY RESULTS (READINGS):")
	p("----------------------------------")
	for _, r := range readings {
		label, field := primaryField(r)
		p("Nerve: %s (%s)", r.NerveName, r.Type)
		p("  - Amplitude: %s", displayField(r.Amplitude))
		p("  - %s: %s", label, displayField(field))
	}
	p("")
	p("SCORE ANALYSIS:")
	p("-------------------")
	writeScore(p, "SCORE #2 (CONDUCTION)", result.Score2)
	p("")
	writeScore(p, "SCORE #4 (AMPLITUDE)", result.Score4)
	p("")
	p("FINAL SEVERITY CLASSIFICATION:")
	p("---------------------------------")
	p("%s", result.Severity)
	p(rule)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	return nil
}

func writeScore(p func(string, ...interface{}), title string, s analysis.Score) {
	p("%s: %d / %d PTS (%s)", title, s.Total, MaxScore, NormalLabel(s))
	if len(s.Details) == 0 {
		p("  (no observations)")
		return
	}
	for _, d := range s.Details {
		p("  - %s: %s (%s) -> %d pt", d.Nerve, d.Value, FormatPercentile(d), d.Points)
	}
}

// TextReportFilename is the conventional download name for a report generated on day.
func TextReportFilename(day time.Time) string {
	return fmt.Sprintf("NCS_Report_%s.txt", day.Format("2006-01-02"))
}

// WriteJSON renders the result as indented JSON.
func WriteJSON(w io.Writer, result *analysis.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}
	return nil
}

// scoreDescriptions annotates each family for the PDF and plots.
var scoreDescriptions = map[string]string{
	"score2": "Score #2 (Conduction)",
	"score4": "Score #4 (Amplitude)",
}

func familyScore(result *analysis.AnalysisResult, family string) (analysis.Score, error) {
	switch strings.ToLower(family) {
	case "score2":
		return result.Score2, nil
	case "score4":
		return result.Score4, nil
	default:
		return analysis.Score{}, fmt.Errorf("unknown score family: %s", family)
	}
}
