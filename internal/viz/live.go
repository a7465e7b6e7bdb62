package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/continuum"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/metrics"
	"github.com/san-kum/predprey/internal/particles"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	plotWidth       = 72
	plotHeight      = 18
	historyCapacity = 600
)

var (
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(42)
	graphStyle = lipgloss.NewStyle().Padding(1, 2)
)

// Snapshot stores state at a specific step for replay.
type Snapshot struct {
	State dynamo.State
	Time  float64
	Step  int
}

type TickMsg time.Time

// LiveOptions describe the run a Model steps through.
type LiveOptions struct {
	Name         string
	Model        string
	N1           int
	Dt           float64
	Steps        int
	StepsPerTick int
	Centroids    metrics.CentroidFunc
}

// Model steps a simulation on every tick and renders the latest state.
type Model struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	opts       LiveOptions

	state, initial dynamo.State
	t              float64
	step           int

	running  bool
	err      error
	history  []Snapshot
	playHead int
	gaps     []float64
	showHelp bool
}

func NewModel(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, opts LiveOptions) Model {
	if opts.StepsPerTick < 1 {
		opts.StepsPerTick = 1
	}
	m := Model{
		sys:        sys,
		integrator: integ,
		opts:       opts,
		state:      x0.Clone(),
		initial:    x0.Clone(),
		running:    true,
		history:    make([]Snapshot, 0, historyCapacity),
		playHead:   -1,
	}
	m.record()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.advance(m.opts.StepsPerTick)
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) done() bool {
	return m.err != nil || (m.opts.Steps > 0 && m.step >= m.opts.Steps)
}

// advance takes up to n explicit steps, stopping on the same failures the
// batch simulator reports.
func (m *Model) advance(n int) {
	for i := 0; i < n && !m.done(); i++ {
		if cr, ok := m.sys.(dynamo.CourantReporter); ok {
			if c := cr.Courant(m.state, m.opts.Dt); c > 1 {
				m.err = fmt.Errorf("%w: courant number %.3f", dynamo.ErrUnstable, c)
				break
			}
		}
		m.integrator.Step(m.sys, m.state, m.t, m.opts.Dt)
		m.step++
		m.t = float64(m.step) * m.opts.Dt
		if !m.state.IsValid() {
			m.err = &dynamo.SimulationError{Step: m.step, Time: m.t, Wrapped: dynamo.ErrInvalidState}
		}
	}
	m.record()
	if m.done() {
		m.running = false
	}
}

func (m *Model) record() {
	m.history = append(m.history, Snapshot{State: m.state.Clone(), Time: m.t, Step: m.step})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if m.opts.Centroids != nil {
		pred, prey := m.opts.Centroids(m.state)
		m.gaps = append(m.gaps, r2.Norm(r2.Sub(prey, pred)))
		if len(m.gaps) > historyCapacity {
			m.gaps = m.gaps[1:]
		}
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial state.
func (m *Model) reset() {
	m.state = m.initial.Clone()
	m.t, m.step, m.err = 0, 0, nil
	m.history = m.history[:0]
	m.gaps = m.gaps[:0]
	m.playHead = -1
	m.running = true
	m.record()
}

// Current returns the displayed snapshot, which lags the live state while
// replaying.
func (m Model) Current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return Snapshot{State: m.state, Time: m.t, Step: m.step}
}

func (m Model) Err() error { return m.err }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.playHead != -1:
		return StatusPaused.Render(fmt.Sprintf("REPLAY %d/%d", m.playHead+1, len(m.history)))
	case m.done():
		return StatusPaused.Render("FINISHED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) plot(snap Snapshot) string {
	switch m.opts.Model {
	case config.ModelContinuum:
		rho1, rho2 := continuum.Unpack(snap.State)
		return DensityPlot(rho1, rho2, plotWidth, plotHeight, "")
	case config.ModelParticles:
		pred, prey := particles.Split(snap.State, m.opts.N1)
		return SwarmPlot(pred, prey, plotWidth/2, plotHeight/2)
	default:
		return ""
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	snap := m.Current()

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.opts.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(Metric("Time", fmt.Sprintf("%.4f", snap.Time)) + "\n")
	s.WriteString(Metric("Step", fmt.Sprintf("%d/%d", snap.Step, m.opts.Steps)) + "\n")
	s.WriteString(Metric("Progress", ProgressBar(float64(snap.Step)/float64(max(m.opts.Steps, 1)), 16)) + "\n")

	switch sys := m.sys.(type) {
	case *continuum.System:
		rho1, rho2 := continuum.Unpack(snap.State)
		s.WriteString(Metric("Mass ρ1", fmt.Sprintf("%.12f", continuum.Mass(rho1))) + "\n")
		s.WriteString(Metric("Mass ρ2", fmt.Sprintf("%.12f", continuum.Mass(rho2))) + "\n")
		s.WriteString(Metric("Courant", fmt.Sprintf("%.3f", sys.Courant(snap.State, m.opts.Dt))) + "\n")
	case *particles.System:
		s.WriteString(Metric("Coincident", fmt.Sprintf("%d", sys.CountCoincident(snap.State))) + "\n")
	}

	if len(m.gaps) > 0 {
		s.WriteString(Metric("Centroid gap", fmt.Sprintf("%.4f", m.gaps[len(m.gaps)-1])) + "\n")
		s.WriteString("\n" + Sparkline(m.gaps, 36) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}
	s.WriteString(KeyHint.Render("\nSP:Pause N:Step R:Reset Q:Quit\nT:Theme [ ]:Time-Travel ?:Help"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, graphStyle.Render(m.plot(snap)), statsStyle.Render(s.String()))
	if m.showHelp {
		return `
  Space  pause or resume
  N      single step while paused
  R      reset to the initial state
  [ ]    rewind or forward through history
  T      cycle themes
  Q      quit
` + "\n" + body
	}
	return body
}
