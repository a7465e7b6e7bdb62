package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/continuum"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/integrators"
	"github.com/san-kum/predprey/internal/kernel"
	"github.com/san-kum/predprey/internal/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCanvasPlotCorners(t *testing.T) {
	c := NewCanvas(4, 2)
	b := Bounds{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 1, Y: 1}}

	c.Plot(b, r2.Vec{X: 0, Y: 1}) // top left
	c.Plot(b, r2.Vec{X: 1, Y: 0}) // bottom right
	c.Plot(b, r2.Vec{X: 2, Y: 2}) // outside, ignored

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("expected top-left dot, got %U", c.Grid[0][0])
	}
	if c.Grid[1][3] != blank|0x80 {
		t.Errorf("expected bottom-right dot, got %U", c.Grid[1][3])
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestFit(t *testing.T) {
	b := Fit(0.1, []r2.Vec{{X: 0, Y: 0}}, []r2.Vec{{X: 2, Y: 1}})
	if b.Min.X != -0.2 || b.Max.Y != 1.1 {
		t.Errorf("unexpected bounds %+v", b)
	}

	single := Fit(0, []r2.Vec{{X: 1, Y: 1}})
	if single.Min.X != 0.5 || single.Max.Y != 1.5 {
		t.Errorf("a single point must still give a non-degenerate viewport, got %+v", single)
	}
}

func TestDensityPlotLegend(t *testing.T) {
	out := DensityPlot([]float64{0, 1, 0}, []float64{1, 0, 1}, 20, 5, "t=0")
	if !strings.Contains(out, "predator") || !strings.Contains(out, "prey") {
		t.Errorf("expected legends in plot:\n%s", out)
	}
}

func TestThemes(t *testing.T) {
	SetTheme(ThemeEmber.Name)
	defer SetTheme(ThemeEmber.Name)

	if GetTheme("missing").Name != ThemeEmber.Name {
		t.Error("unknown themes fall back to ember")
	}
	for range ThemeNames() {
		NextTheme()
	}
	if CurrentTheme.Name != ThemeEmber.Name {
		t.Errorf("cycling through every theme should return to ember, got %s", CurrentTheme.Name)
	}
}

func newLiveModel(t *testing.T, steps int) Model {
	t.Helper()
	g, err := continuum.NewGrid(-1, 1, 64)
	if err != nil {
		t.Fatal(err)
	}
	p, err := continuum.NewProblem(g, continuum.Potentials{W1: kernel.Abs(1), W2: kernel.Abs(1), K: kernel.Abs(1)}, 0.3, continuum.Outflow)
	if err != nil {
		t.Fatal(err)
	}
	rho1, _ := continuum.NewDensity(g, continuum.Indicator(-0.6, -0.4))
	rho2, _ := continuum.NewDensity(g, continuum.Indicator(0.2, 0.4))

	return NewModel(continuum.NewSystem(p), integrators.NewEuler(), continuum.Pack(rho1, rho2), LiveOptions{
		Name:         "chase",
		Model:        config.ModelContinuum,
		Dt:           0.002,
		Steps:        steps,
		StepsPerTick: 4,
		Centroids:    metrics.DensityCentroids(g.X),
	})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveModelSteps(t *testing.T) {
	m := newLiveModel(t, 10)

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if m.Current().Step != 4 {
		t.Fatalf("expected 4 steps after one tick, got %d", m.Current().Step)
	}

	for i := 0; i < 5; i++ {
		next, _ = m.Update(TickMsg{})
		m = next.(Model)
	}
	if m.Current().Step != 10 {
		t.Errorf("run must stop at its last step, got %d", m.Current().Step)
	}
	if !strings.Contains(m.View(), "FINISHED") {
		t.Error("expected finished status")
	}

	next, _ = m.Update(key("r"))
	m = next.(Model)
	if m.Current().Step != 0 || m.Err() != nil {
		t.Errorf("reset should rewind to step 0, got %d", m.Current().Step)
	}
}

func TestLiveModelPauseAndScrub(t *testing.T) {
	m := newLiveModel(t, 100)

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.Current().Step != 4 {
		t.Fatalf("paused model must not step, got %d", m.Current().Step)
	}

	next, _ = m.Update(key("n"))
	m = next.(Model)
	if m.Current().Step != 5 {
		t.Fatalf("expected single step to 5, got %d", m.Current().Step)
	}

	next, _ = m.Update(key("["))
	m = next.(Model)
	if m.Current().Step != 4 {
		t.Errorf("expected replay of step 4, got %d", m.Current().Step)
	}
}

func TestLiveModelStopsWhenUnstable(t *testing.T) {
	m := newLiveModel(t, 100)
	m.opts.Dt = 1

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if m.Err() == nil || m.Current().Step != 0 {
		t.Errorf("expected courant failure before the first step, got step %d err %v", m.Current().Step, m.Err())
	}
	if !strings.Contains(m.View(), "FAILED") {
		t.Error("expected failed status")
	}
}

var _ dynamo.System = (*continuum.System)(nil)
