package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"
)

// DensityPlot draws both densities on one asciigraph chart. width <= 0
// keeps one column per grid cell.
func DensityPlot(rho1, rho2 []float64, width, height int, caption string) string {
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(CurrentTheme.PredatorSeries, CurrentTheme.PreySeries),
		asciigraph.SeriesLegends("predator", "prey"),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	return asciigraph.PlotMany([][]float64{rho1, rho2}, opts...)
}

// SeriesPlot draws a scalar time series such as the centroid gap.
func SeriesPlot(values []float64, width, height int, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(CurrentTheme.PredatorSeries),
	)
}

// SwarmPlot draws both particle sets on a Braille canvas. Cells holding any
// predator take the predator color.
func SwarmPlot(pred, prey []r2.Vec, width, height int) string {
	b := Fit(0.05, pred, prey)

	pc := NewCanvas(width, height)
	qc := NewCanvas(width, height)
	for _, p := range pred {
		pc.Plot(b, p)
	}
	for _, q := range prey {
		qc.Plot(b, q)
	}

	predStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Predator)
	preyStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Prey)

	var s strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			p, q := pc.Grid[row][col], qc.Grid[row][col]
			cell := string((p | q))
			switch {
			case p != blank:
				s.WriteString(predStyle.Render(cell))
			case q != blank:
				s.WriteString(preyStyle.Render(cell))
			default:
				s.WriteString(cell)
			}
		}
		s.WriteByte('\n')
	}
	s.WriteString(Subtle.Render(fmt.Sprintf("x ∈ [%.3g, %.3g]  y ∈ [%.3g, %.3g]", b.Min.X, b.Max.X, b.Min.Y, b.Max.Y)))
	return s.String()
}
