package metrics

import (
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// MassDrift tracks the largest absolute change of Σ x[lo:hi] relative to the
// first observed value.
type MassDrift struct {
	name     string
	lo, hi   int
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift(name string, lo, hi int) *MassDrift {
	return &MassDrift{name: name, lo: lo, hi: hi}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(x dynamo.State, t float64) {
	mass := floats.Sum(x[m.lo:m.hi])
	if m.samples == 0 {
		m.initial = mass
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Abs(mass-m.initial))
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// MinDensity is the smallest entry seen across all observed states.
type MinDensity struct {
	min     float64
	samples int
}

func NewMinDensity() *MinDensity {
	return &MinDensity{min: math.Inf(1)}
}

func (m *MinDensity) Name() string { return "min_density" }

func (m *MinDensity) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	m.min = math.Min(m.min, floats.Min(x))
	m.samples++
}

func (m *MinDensity) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinDensity) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}
