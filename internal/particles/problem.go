// Package particles integrates the 2-D discrete predator–prey model: N1
// predators and N2 prey move under mean-field pairwise radial forces,
//
//	ẋ_i = −(1/N1) Σ_j ∇S1(x_i − x_j) − (1/N2) Σ_k ∇K(x_i − y_k)
//	ẏ_k = −(1/N2) Σ_l ∇S2(y_k − y_l) + α (1/N1) Σ_i ∇K(y_k − x_i)
//
// where ∇φ(d) = d·φ'(|d|)/|d|. Positions live in a flat [dynamo.State]
// laid out as [x_0, y_0, x_1, y_1, ...] with all predators first.
package particles

import (
	"fmt"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/kernel"
)

type Potentials struct {
	S1 kernel.Potential
	S2 kernel.Potential
	K  kernel.Potential
}

// Problem is the read-only setup of a particle run.
type Problem struct {
	N1, N2     int
	Potentials Potentials
	Alpha      float64

	// Workers bounds the goroutines used for per-particle aggregation;
	// <= 0 uses GOMAXPROCS.
	Workers int
}

func NewProblem(n1, n2 int, pots Potentials, alpha float64) (*Problem, error) {
	if n1 <= 0 || n2 <= 0 {
		return nil, fmt.Errorf("%w: population sizes must be positive, got %d and %d", dynamo.ErrParameterBounds, n1, n2)
	}
	if alpha < 0 {
		return nil, fmt.Errorf("%w: alpha must not be negative, got %g", dynamo.ErrParameterBounds, alpha)
	}
	for _, p := range []kernel.Potential{pots.S1, pots.S2, pots.K} {
		if err := kernel.CheckOrigin(p); err != nil {
			return nil, err
		}
	}

	return &Problem{N1: n1, N2: n2, Potentials: pots, Alpha: alpha}, nil
}

// Dim is the length of the flat position state.
func (p *Problem) Dim() int { return 2 * (p.N1 + p.N2) }
