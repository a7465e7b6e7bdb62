package continuum

import (
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// System is the semi-discrete upwind scheme dρ/dt = −(F_{i+1/2} − F_{i−1/2})/Δx
// over the state [ρ1..., ρ2...]. It keeps scratch buffers and is not safe for
// concurrent use.
type System struct {
	p *Problem

	a1, a2   []float64
	pos, neg []float64
	tmp      []float64
	flux     []float64
}

func NewSystem(p *Problem) *System {
	n := p.Grid.Len()
	return &System{
		p:    p,
		a1:   make([]float64, n),
		a2:   make([]float64, n),
		pos:  make([]float64, n),
		neg:  make([]float64, n),
		tmp:  make([]float64, n),
		flux: make([]float64, n+1),
	}
}

func (s *System) Problem() *Problem { return s.p }

func (s *System) Dim() int { return 2 * s.p.Grid.Len() }

func (s *System) Derive(dst, x dynamo.State, t float64) {
	rho1, rho2 := Unpack(x)
	d1, d2 := Unpack(dst)

	s.p.Velocities(s.a1, s.a2, rho1, rho2, s.tmp)
	s.divergence(d1, s.a1, rho1)
	s.divergence(d2, s.a2, rho2)
}

func (s *System) divergence(dst, a, rho []float64) {
	SplitVelocity(a, s.pos, s.neg)
	Fluxes(s.flux, s.pos, s.neg, rho, s.p.Boundary)

	dx := s.p.Grid.Dx
	for i := range dst {
		dst[i] = -(s.flux[i+1] - s.flux[i]) / dx
	}
}

// Courant returns Δt·max(|a1|, |a2|)/Δx for the velocities induced by x.
func (s *System) Courant(x dynamo.State, dt float64) float64 {
	a1, a2 := s.Velocities(x)
	speed := math.Max(floats.Norm(a1, math.Inf(1)), floats.Norm(a2, math.Inf(1)))
	return dt * speed / s.p.Grid.Dx
}

// Velocities returns fresh copies of the velocity fields induced by x.
func (s *System) Velocities(x dynamo.State) (a1, a2 []float64) {
	rho1, rho2 := Unpack(x)
	n := s.p.Grid.Len()
	a1 = make([]float64, n)
	a2 = make([]float64, n)
	s.p.Velocities(a1, a2, rho1, rho2, s.tmp)
	return a1, a2
}

// MaxStableDt returns the largest step that satisfies the CFL bound at x.
// It is +Inf when x induces no motion.
func (s *System) MaxStableDt(x dynamo.State) float64 {
	c := s.Courant(x, 1)
	if c == 0 {
		return math.Inf(1)
	}
	return 1 / c
}
