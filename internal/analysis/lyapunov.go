package analysis

import (
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// LyapunovExponent estimates how fast two runs started delta apart diverge,
// using the trajectory separation method. A positive value means the
// configuration is sensitive to its initial placement.
//
// Algorithm:
// 1. Run two nearby trajectories
// 2. Measure their separation every step
// 3. Pull the perturbed run back to distance |δx(0)| after each step
// 4. λ ≈ (1/t) * Σ ln(|δx|/|δx(0)|)
func LyapunovExponent(
	sys dynamo.System,
	integ func() dynamo.Integrator,
	x0, delta dynamo.State,
	dt float64,
	steps int,
) float64 {
	d0 := floats.Norm(delta, 2)
	if len(x0) == 0 || d0 == 0 || steps <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	floats.Add(xp, delta)

	// separate integrators so scratch buffers are not shared
	a, b := integ(), integ()

	sumLog := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		a.Step(sys, x, t, dt)
		b.Step(sys, xp, t, dt)

		sep := floats.Distance(xp, x, 2)
		if sep == 0 || math.IsInf(sep, 0) || math.IsNaN(sep) {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
