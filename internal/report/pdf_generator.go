package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/dpn_scorer_go/internal/analysis"
	"github.com/user/dpn_scorer_go/internal/normative"
	"github.com/user/dpn_scorer_go/internal/parser"
)

const (
	inchToMm         = 25.4
	pdfPageWidth     = 8.5 * inchToMm // Letter portrait
	pdfPageHeight    = 11 * inchToMm
	pdfMargin        = 0.5 * inchToMm
	pdfContentWidth  = pdfPageWidth - (2 * pdfMargin)
	pdfContentHeight = pdfPageHeight - pdfMargin
)

// Plot image keys understood by BuildPDFReport.
const (
	PlotScore2  = "percentile_score2"
	PlotScore4  = "percentile_score4"
	PlotHeatmap = "points_heatmap"
)

// pdfStyler holds reusable styling and the flowing Y position.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["severity"] = func() {
		s.pdf.SetFont("Arial", "B", 12)
		s.pdf.SetTextColor(30, 64, 175)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > pdfContentHeight {
		s.pdf.AddPage()
		s.currentY = s.contentTopY
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// writeTable draws a header row and data rows. highlight reports which cells are drawn
// in the red style.
func (s *pdfStyler) writeTable(headers []string, colWidthsRel []float64, rows [][]string, highlight func(row, col int) bool) {
	colWidths := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidths[i] = rel * pdfContentWidth
	}

	s.checkAddPage(s.lineHeight * 2)
	x := pdfMargin
	s.applyStyle("tableHeader")
	for i, header := range headers {
		s.pdf.SetXY(x, s.currentY)
		s.pdf.CellFormat(colWidths[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
		x += colWidths[i]
	}
	s.currentY += s.lineHeight

	for r, row := range rows {
		s.checkAddPage(s.lineHeight)
		x = pdfMargin
		for c, cell := range row {
			if highlight != nil && highlight(r, c) {
				s.applyStyle("tableCellRed")
			} else {
				s.applyStyle("tableCell")
			}
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidths[c], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += colWidths[c]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	s.pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(imageBytes))

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	s.pdf.ImageOptions(imageName, pdfMargin, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// amplitudeLimit is the lower limit of normal amplitude for a score #4 detail.
func amplitudeLimit(d analysis.ScoreDetail, patient parser.PatientData) string {
	stats, ok := normative.ResolveByName(d.Nerve, patient.Age, patient.Height)
	if !ok {
		return "-"
	}
	return fmt.Sprintf(">= %.1f", stats.AmplitudeStat().LowerLimit())
}

func scoreRows(score analysis.Score, limit func(analysis.ScoreDetail) string) [][]string {
	rows := make([][]string, 0, len(score.Details))
	for _, d := range score.Details {
		rows = append(rows, []string{
			d.Nerve,
			d.Value.String(),
			limit(d),
			FormatPercentile(d),
			fmt.Sprintf("%d", d.Points),
		})
	}
	return rows
}

// WritePDFReport lays out the analysis as a PDF and writes it to w. plotImages may hold
// PNGs under the Plot* keys; missing plots are noted in the document.
func WritePDFReport(w io.Writer, patient parser.PatientData, readings []parser.NerveReading,
	result *analysis.AnalysisResult, plotImages map[string][]byte, generatedAt time.Time) error {

	if result == nil {
		return fmt.Errorf("no analysis result to report")
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph("Nerve Conduction Report - Diabetic Polyneuropathy Staging", "h1", "C")
	styler.writeParagraph(fmt.Sprintf("Generated %s", generatedAt.Format("2006-01-02")), "normal", "C")
	styler.addSpacer(4)

	styler.writeParagraph("Patient", "h2", "L")
	if patient.Name != "" {
		styler.writeParagraph(fmt.Sprintf("Name: %s", patient.Name), "normal", "L")
	}
	styler.writeParagraph(fmt.Sprintf("Age: %d years   Height: %g cm   Weight: %g kg", patient.Age, patient.Height, patient.Weight), "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Symptoms: %s", patient.Symptoms), "normal", "L")
	styler.addSpacer(4)

	styler.writeParagraph("Readings", "h2", "L")
	readingRows := make([][]string, 0, len(readings))
	for _, r := range readings {
		label, field := primaryField(r)
		readingRows = append(readingRows, []string{r.NerveName, r.Type.String(), label, displayField(field), displayField(r.Amplitude)})
	}
	styler.writeTable([]string{"Nerve", "Type", "Parameter", "Value", "Amplitude"},
		[]float64{0.3, 0.15, 0.2, 0.15, 0.2}, readingRows, nil)
	styler.addSpacer(5)

	headers := []string{"Nerve", "Value", "Ref. limit", "Percentile", "Points"}
	widths := []float64{0.3, 0.15, 0.2, 0.2, 0.15}
	for _, fam := range []struct {
		key   string
		score analysis.Score
		limit func(analysis.ScoreDetail) string
	}{
		{"score2", result.Score2, func(d analysis.ScoreDetail) string { return conductionLimit(d, patient) }},
		{"score4", result.Score4, func(d analysis.ScoreDetail) string { return amplitudeLimit(d, patient) }},
	} {
		score := fam.score
		styler.writeParagraph(fmt.Sprintf("%s: %d / %d pts (%s)", scoreDescriptions[fam.key], score.Total, MaxScore, NormalLabel(score)), "h2", "L")
		if len(score.Details) == 0 {
			styler.writeParagraph("No observations.", "normal", "L")
		} else {
			styler.writeTable(headers, widths, scoreRows(score, fam.limit), func(row, col int) bool {
				return col == 4 && score.Details[row].Points > 0
			})
		}
		styler.addSpacer(5)
	}

	styler.writeParagraph("Final severity classification", "h2", "L")
	styler.writeParagraph(result.Severity.String(), "severity", "L")

	if len(plotImages) > 0 {
		styler.pdf.AddPage()
		styler.currentY = styler.contentTopY
		styler.writeParagraph("Graphical Analysis", "h1", "C")
		styler.addSpacer(4)

		imgWidth := pdfContentWidth * 0.9
		for _, pDef := range []struct {
			key, caption string
			aspect       float64
		}{
			{PlotScore2, "Score #2 percentiles per observation", 0.5},
			{PlotScore4, "Score #4 percentiles per observation", 0.5},
			{PlotHeatmap, "Points per nerve and score family", 2.0 / 3.0},
		} {
			if imgBytes, ok := plotImages[pDef.key]; ok && len(imgBytes) > 0 {
				styler.addImage(imgBytes, pDef.key, imgWidth, imgWidth*pDef.aspect, pDef.caption)
			} else {
				styler.writeParagraph(fmt.Sprintf("Plot not available: %s.", pDef.caption), "normal", "L")
			}
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// conductionLimit is the limit of normal for a score #2 detail: velocity for motor
// nerves, peak latency for the sural nerve.
func conductionLimit(d analysis.ScoreDetail, patient parser.PatientData) string {
	stats, ok := normative.ResolveByName(d.Nerve, patient.Age, patient.Height)
	if !ok {
		return "-"
	}
	switch s := stats.(type) {
	case normative.MotorStats:
		return fmt.Sprintf(">= %.1f", s.Velocity.LowerLimit())
	case normative.SensoryStats:
		return fmt.Sprintf("<= %.1f", s.PeakLatency.UpperLimit())
	default:
		return "-"
	}
}

// BuildPDFReport writes the PDF report to a file.
func BuildPDFReport(filepath string, patient parser.PatientData, readings []parser.NerveReading,
	result *analysis.AnalysisResult, plotImages map[string][]byte, generatedAt time.Time) error {

	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create PDF file: %w", err)
	}
	if err := WritePDFReport(file, patient, readings, result, plotImages, generatedAt); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close PDF file: %w", err)
	}
	return nil
}
