package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type testSystem struct{ rate float64 }

func (s *testSystem) Derive(dst, x State, t float64) {
	for i := range x {
		dst[i] = -s.rate * x[i]
	}
}

func (s *testSystem) Dim() int { return 1 }

// Courant reports rate*dt so tests can trip the CFL check.
func (s *testSystem) Courant(x State, dt float64) float64 { return s.rate * dt }

type testIntegrator struct{ dx State }

func (e *testIntegrator) Step(sys System, x State, t, dt float64) {
	if len(e.dx) != len(x) {
		e.dx = make(State, len(x))
	}
	sys.Derive(e.dx, x, t)
	for i := range x {
		x[i] += dt * e.dx[i]
	}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&testSystem{rate: 1}, &testIntegrator{})

	cfg := Config{Duration: 1.0, Steps: 10, SnapshotEvery: 1}

	x0 := State{1.0}
	result, err := sim.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if x0[0] != 1.0 {
		t.Error("run mutated the initial state")
	}

	expected := math.Pow(0.9, 10)
	if math.Abs(result.Final[0]-expected) > 1e-12 {
		t.Errorf("expected final state %.6f, got %.6f", expected, result.Final[0])
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %f", result.Times[10])
	}
}

func TestSimulatorSnapshotCadence(t *testing.T) {
	sim := New(&testSystem{rate: 1}, &testIntegrator{})

	tests := []struct {
		name  string
		every int
		steps []int
	}{
		{"final only", 0, []int{0, 7}},
		{"every 3", 3, []int{0, 3, 6, 7}},
		{"every step", 1, []int{0, 1, 2, 3, 4, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := sim.Run(context.Background(), State{1}, Config{Duration: 0.7, Steps: 7, SnapshotEvery: tt.every})
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if len(result.Steps) != len(tt.steps) {
				t.Fatalf("expected snapshots at %v, got %v", tt.steps, result.Steps)
			}
			for i := range tt.steps {
				if result.Steps[i] != tt.steps[i] {
					t.Errorf("snapshot %d at step %d, want %d", i, result.Steps[i], tt.steps[i])
				}
			}
		})
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&testSystem{rate: 1}, &testIntegrator{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero duration", Config{Duration: 0, Steps: 10}},
		{"negative duration", Config{Duration: -1.0, Steps: 10}},
		{"negative steps", Config{Duration: 1.0, Steps: -1}},
		{"no steps no dt", Config{Duration: 1.0}},
		{"dt larger than duration", Config{Duration: 1.0, Dt: 5}},
		{"negative cadence", Config{Duration: 1.0, Steps: 10, SnapshotEvery: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), State{1.0}, tt.cfg)
			if !errors.Is(err, ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSimulatorDimensionMismatch(t *testing.T) {
	sim := New(&testSystem{rate: 1}, &testIntegrator{})
	_, err := sim.Run(context.Background(), State{1, 2}, Config{Duration: 1, Steps: 1})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimulatorCourantCheck(t *testing.T) {
	sim := New(&testSystem{rate: 50}, &testIntegrator{})

	cfg := Config{Duration: 1.0, Steps: 10, CheckCFL: true}
	result, err := sim.Run(context.Background(), State{1}, cfg)

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, ErrUnstable) {
		t.Errorf("expected ErrUnstable, got %v", err)
	}
	if simErr.Step != 0 || result.StepsTaken != 0 {
		t.Errorf("expected pre-flight failure, got step %d after %d steps", simErr.Step, result.StepsTaken)
	}

	cfg.CheckCFL = false
	if _, err := sim.Run(context.Background(), State{1}, cfg); err != nil {
		t.Errorf("unchecked run failed: %v", err)
	}
}

func TestSimulatorCourantNaN(t *testing.T) {
	sim := New(&testSystem{rate: math.NaN()}, &testIntegrator{})

	cfg := Config{Duration: 1.0, Steps: 10, CheckCFL: true}
	result, err := sim.Run(context.Background(), State{1}, cfg)
	if !errors.Is(err, ErrUnstable) {
		t.Fatalf("expected ErrUnstable for a NaN courant number, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, took %d", result.StepsTaken)
	}
}

func TestSimulatorInvalidState(t *testing.T) {
	sim := New(&testSystem{rate: 1}, &testIntegrator{})
	cfg := Config{Duration: 1, Steps: 2, ValidateState: true}

	_, err := sim.Run(context.Background(), State{math.NaN()}, cfg)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(&testSystem{rate: 1}, &testIntegrator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, State{1}, Config{Duration: 1, Steps: 10})
	if !errors.Is(err, ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(x State, t float64) {
	m.count++
	m.sum += x[0]
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

type countingObserver struct{ steps []int }

func (o *countingObserver) OnStep(step int, t float64, x State) { o.steps = append(o.steps, step) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	sim := New(&testSystem{rate: 1}, &testIntegrator{})

	metric := &testMetric{}
	obs := &countingObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Duration: 1.0, Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
	if len(obs.steps) != 10 || obs.steps[9] != 10 {
		t.Errorf("unexpected observer steps: %v", obs.steps)
	}
}
