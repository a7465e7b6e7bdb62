package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances a copy of x0 through every step of cfg. Step n+1 always reads
// the fully updated state of step n. On a failed step the partial result is
// returned together with a *SimulationError.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.Dim() {
		return nil, fmt.Errorf("%w: state has %d entries, system expects %d", ErrDimensionMismatch, len(x0), s.sys.Dim())
	}

	steps, dt := cfg.Discretize()
	every := cfg.SnapshotEvery
	if every == 0 {
		every = steps
	}

	result := &Result{
		States:  make([]State, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Steps:   make([]int, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Dt:      dt,
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	if cfg.ValidateState && !x.IsValid() {
		return nil, &SimulationError{Step: 0, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
	}

	s.record(result, 0, t, x)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Final = x
			return result, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err())}
		default:
		}

		if cfg.CheckCFL {
			if err := s.checkCourant(x, dt); err != nil {
				result.Final = x
				return result, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
			}
		}

		s.integrator.Step(s.sys, x, t, dt)
		t = float64(i+1) * dt
		result.StepsTaken++

		if cfg.ValidateState && !x.IsValid() {
			result.Final = x
			return result, &SimulationError{Step: i + 1, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(i+1, t, x)
		}

		if (i+1)%every == 0 || i+1 == steps {
			s.record(result, i+1, t, x)
		}
	}

	result.Final = x
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(result *Result, step int, t float64, x State) {
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	result.Steps = append(result.Steps, step)
}

func (s *Simulator) checkCourant(x State, dt float64) error {
	cr, ok := s.sys.(CourantReporter)
	if !ok {
		return nil
	}
	// NaN fails the comparison and is reported as unstable.
	if c := cr.Courant(x, dt); !(c <= 1) {
		return fmt.Errorf("%w: courant number %.4f exceeds 1 (dt=%g)", ErrUnstable, c, dt)
	}
	return nil
}
