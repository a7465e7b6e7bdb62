package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/predprey/internal/viz"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// project maps p inside b onto a width x height image with y pointing up.
func project(b viz.Bounds, p r2.Vec, width, height int) (float64, float64) {
	x := (p.X - b.Min.X) / (b.Max.X - b.Min.X) * float64(width)
	y := float64(height) - (p.Y-b.Min.Y)/(b.Max.Y-b.Min.Y)*float64(height)
	return x, y
}

// Swarm draws predators and prey as dots in the colors of theme.
func Swarm(pred, prey []r2.Vec, width, height int, theme viz.Theme) string {
	if len(pred)+len(prey) == 0 {
		return ""
	}
	b := viz.Fit(0.1, pred, prey)

	var sb strings.Builder
	header(&sb, width, height)

	radius := max(float64(min(width, height))/200, 1)
	for _, group := range []struct {
		pts   []r2.Vec
		color string
	}{
		{prey, string(theme.Prey)},
		{pred, string(theme.Predator)},
	} {
		sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", group.color))
		for _, p := range group.pts {
			cx, cy := project(b, p, width, height)
			sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, radius))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Densities draws both density profiles over the cell centers x.
func Densities(x, rho1, rho2 []float64, width, height int, theme viz.Theme) string {
	if len(x) < 2 || len(rho1) != len(x) || len(rho2) != len(x) {
		return ""
	}

	top := max(floats.Max(rho1), floats.Max(rho2))
	if top <= 0 {
		top = 1
	}
	b := viz.Bounds{
		Min: r2.Vec{X: x[0], Y: 0},
		Max: r2.Vec{X: x[len(x)-1], Y: 1.1 * top},
	}

	var sb strings.Builder
	header(&sb, width, height)

	for _, series := range []struct {
		rho   []float64
		color string
	}{
		{rho2, string(theme.Prey)},
		{rho1, string(theme.Predator)},
	} {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, series.color))
		for i, v := range series.rho {
			px, py := project(b, r2.Vec{X: x[i], Y: v}, width, height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
