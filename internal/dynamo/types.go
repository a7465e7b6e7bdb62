package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System evaluates the time derivative of a state. Derive writes into dst,
// which has the same length as x, and must not modify x.
type System interface {
	Derive(dst, x State, t float64)
	Dim() int
}

// CourantReporter is implemented by systems that can bound their explicit
// step size. Courant returns dt*max|v|/dx for the velocity field induced by x.
type CourantReporter interface {
	Courant(x State, dt float64) float64
}

// Integrator advances x in place by one step of size dt.
type Integrator interface {
	Step(sys System, x State, t, dt float64)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, t float64, x State)
}

// Config describes the time discretization of a run. When Steps is set the
// step size is Duration/Steps; otherwise Steps is derived from Dt.
type Config struct {
	Duration      float64
	Steps         int
	Dt            float64
	SnapshotEvery int
	CheckCFL      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      2.0,
		Steps:         1000,
		SnapshotEvery: 100,
		CheckCFL:      true,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrParameterBounds, c.Duration)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrParameterBounds, c.Steps)
	}
	if c.Steps == 0 {
		if c.Dt <= 0 {
			return fmt.Errorf("%w: either steps or dt must be positive", ErrParameterBounds)
		}
		if math.Round(c.Duration/c.Dt) < 1 {
			return fmt.Errorf("%w: dt %g exceeds duration %g", ErrParameterBounds, c.Dt, c.Duration)
		}
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot cadence must not be negative, got %d", ErrParameterBounds, c.SnapshotEvery)
	}
	return nil
}

// Discretize returns the number of steps and the step size. It assumes the
// config is valid.
func (c Config) Discretize() (int, float64) {
	if c.Steps > 0 {
		return c.Steps, c.Duration / float64(c.Steps)
	}
	steps := int(math.Round(c.Duration / c.Dt))
	return steps, c.Duration / float64(steps)
}

// Result holds the snapshots recorded at the configured cadence. The initial
// and final states are always recorded.
type Result struct {
	States     []State
	Times      []float64
	Steps      []int
	Final      State
	Metrics    map[string]float64
	StepsTaken int
	Dt         float64
}
