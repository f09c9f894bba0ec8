package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/dpn_scorer_go/internal/analysis"
)

var (
	colorNormal   = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255} // Green
	colorBorder   = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255} // Orange
	colorAbnormal = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255} // Red
)

func pointsColor(points int) color.Color {
	switch points {
	case 0:
		return colorNormal
	case 1:
		return colorBorder
	default:
		return colorAbnormal
	}
}

// CreatePercentilePlot draws one bar per detail of a score family ("score2" or
// "score4"), with the percentile (0-100) as height and the point thresholds as dashed
// lines. It returns PNG bytes.
func CreatePercentilePlot(result *analysis.AnalysisResult, family string) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result to plot")
	}
	score, err := familyScore(result, family)
	if err != nil {
		return nil, err
	}
	if len(score.Details) == 0 {
		return nil, fmt.Errorf("%s has no observations to plot", family)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %d / %d pts (%s)", scoreDescriptions[family], score.Total, MaxScore, NormalLabel(score))
	p.Y.Label.Text = "Percentile"
	p.Y.Min = 0
	p.Y.Max = 100
	p.Add(plotter.NewGrid())

	names := make([]string, len(score.Details))
	barWidth := vg.Points(40)
	for i, d := range score.Details {
		names[i] = d.Nerve

		// One chart per bar so each can carry the color of its points.
		vals := make(plotter.Values, len(score.Details))
		vals[i] = d.Percentile * 100
		bar, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to create bar for %s: %w", d.Nerve, err)
		}
		bar.Color = pointsColor(d.Points)
		bar.LineStyle.Width = vg.Length(0)
		p.Add(bar)
	}
	p.NominalX(names...)

	thresholds := []float64{1, 5}
	if anyUpperTail(score) {
		thresholds = append(thresholds, 95, 99)
	}
	for _, t := range thresholds {
		line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: t}, {X: float64(len(names)) - 0.5, Y: t}})
		if err != nil {
			return nil, fmt.Errorf("failed to create threshold line: %w", err)
		}
		line.Color = colorAbnormal
		line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("P%g", t), line)
	}
	p.Legend.Top = true

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

func anyUpperTail(s analysis.Score) bool {
	for _, d := range s.Details {
		if d.UpperTail {
			return true
		}
	}
	return false
}

func renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
