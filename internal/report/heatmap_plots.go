package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/dpn_scorer_go/internal/analysis"
	"github.com/user/dpn_scorer_go/internal/normative"
)

// pointsPalette maps 0, 1 and 2 points to green, orange and red.
type pointsPalette []color.Color

func (p pointsPalette) Colors() []color.Color { return p }

// pointsGrid is a nerves x score-family grid of points; NaN where nothing was scored.
type pointsGrid struct {
	nerves []string
	z      [][2]float64
}

func (g *pointsGrid) Dims() (c, r int)   { return 2, len(g.nerves) }
func (g *pointsGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g *pointsGrid) X(c int) float64    { return float64(c) }
func (g *pointsGrid) Y(r int) float64    { return float64(r) }

func (g *pointsGrid) rowFor(name string) int {
	for i, n := range g.nerves {
		if n == name {
			return i
		}
	}
	g.nerves = append(g.nerves, name)
	g.z = append(g.z, [2]float64{math.NaN(), math.NaN()})
	return len(g.nerves) - 1
}

// newPointsGrid groups details by nerve identity so the sural latency row lines up with
// the sural amplitude row.
func newPointsGrid(result *analysis.AnalysisResult) *pointsGrid {
	g := &pointsGrid{}
	rowName := func(label string) string {
		if n := normative.IdentifyNerve(label); n != normative.UnknownNerve {
			return n.String()
		}
		return label
	}
	for _, d := range result.Score2.Details {
		row := g.rowFor(rowName(d.Nerve))
		g.z[row][0] = float64(d.Points)
	}
	for _, d := range result.Score4.Details {
		row := g.rowFor(rowName(d.Nerve))
		g.z[row][1] = float64(d.Points)
	}
	return g
}

// CreatePointsHeatmap draws the points awarded per nerve (rows) and score family
// (columns). Cells with no observation are grey. It returns PNG bytes.
func CreatePointsHeatmap(result *analysis.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result to plot heatmap")
	}
	grid := newPointsGrid(result)
	if len(grid.nerves) == 0 {
		return nil, fmt.Errorf("no scored nerves found for heatmap")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Points per nerve (%s)", result.Severity.Code())
	p.X.Label.Text = "Score family"
	p.Y.Label.Text = "Nerve"

	p.X.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: scoreDescriptions["score2"]},
		{Value: 1, Label: scoreDescriptions["score4"]},
	})
	p.X.Min = -0.5
	p.X.Max = 1.5

	yTicks := make([]plot.Tick, len(grid.nerves))
	for i, name := range grid.nerves {
		yTicks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(grid.nerves)) - 0.5

	hm := plotter.NewHeatMap(grid, pointsPalette{colorNormal, colorBorder, colorAbnormal})
	hm.Min = 0
	hm.Max = 2
	hm.NaN = color.Gray{Y: 200}
	p.Add(hm)

	return renderPNG(p, vg.Points(600), vg.Points(400))
}
