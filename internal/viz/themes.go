package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme pairs terminal colors with the asciigraph series colors used for
// the two species.
type Theme struct {
	Name           string
	Predator       lipgloss.Color
	Prey           lipgloss.Color
	Accent         lipgloss.Color
	Muted          lipgloss.Color
	PredatorSeries asciigraph.AnsiColor
	PreySeries     asciigraph.AnsiColor
}

var (
	ThemeEmber = Theme{
		Name:           "ember",
		Predator:       lipgloss.Color("#ff5f5f"),
		Prey:           lipgloss.Color("#5fafff"),
		Accent:         lipgloss.Color("#ffaf00"),
		Muted:          lipgloss.Color("#666688"),
		PredatorSeries: asciigraph.IndianRed,
		PreySeries:     asciigraph.DodgerBlue,
	}

	ThemeForest = Theme{
		Name:           "forest",
		Predator:       lipgloss.Color("#d78700"),
		Prey:           lipgloss.Color("#87d787"),
		Accent:         lipgloss.Color("#afd7ff"),
		Muted:          lipgloss.Color("#5f875f"),
		PredatorSeries: asciigraph.DarkOrange,
		PreySeries:     asciigraph.LightGreen,
	}

	ThemeMono = Theme{
		Name:           "mono",
		Predator:       lipgloss.Color("#ffffff"),
		Prey:           lipgloss.Color("#9e9e9e"),
		Accent:         lipgloss.Color("#ffffff"),
		Muted:          lipgloss.Color("#585858"),
		PredatorSeries: asciigraph.White,
		PreySeries:     asciigraph.Gray,
	}
)

var themes = []Theme{ThemeEmber, ThemeForest, ThemeMono}

var CurrentTheme = ThemeEmber

func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeEmber
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}
