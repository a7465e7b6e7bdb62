package continuum

import (
	"fmt"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/kernel"
	"gonum.org/v1/gonum/mat"
)

// Boundary selects how the scheme treats the two domain edges.
type Boundary string

const (
	// Outflow lets mass leave through the boundary cells; nothing enters.
	Outflow Boundary = "outflow"
	// Closed sets both edge fluxes to zero.
	Closed Boundary = "closed"
)

func ParseBoundary(s string) (Boundary, error) {
	switch Boundary(s) {
	case Outflow, "":
		return Outflow, nil
	case Closed:
		return Closed, nil
	default:
		return "", fmt.Errorf("%w: unknown boundary %q", dynamo.ErrParameterBounds, s)
	}
}

// Potentials names the three interaction potentials of the model.
type Potentials struct {
	W1 kernel.Potential
	W2 kernel.Potential
	K  kernel.Potential
}

// Problem is the read-only setup of a continuum run.
type Problem struct {
	Grid       *Grid
	Potentials Potentials
	Beta       float64
	Boundary   Boundary

	// W1, W2 and K hold the derivative matrices M[i][l] = φ'(x_i − x_l).
	W1 *mat.Dense
	W2 *mat.Dense
	K  *mat.Dense
}

func NewProblem(grid *Grid, pots Potentials, beta float64, boundary Boundary) (*Problem, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", dynamo.ErrParameterBounds)
	}
	if beta < 0 {
		return nil, fmt.Errorf("%w: beta must not be negative, got %g", dynamo.ErrParameterBounds, beta)
	}
	if boundary != Outflow && boundary != Closed {
		return nil, fmt.Errorf("%w: unknown boundary %q", dynamo.ErrParameterBounds, boundary)
	}
	for _, p := range []kernel.Potential{pots.W1, pots.W2, pots.K} {
		if err := kernel.CheckOrigin(p); err != nil {
			return nil, err
		}
	}

	return &Problem{
		Grid:       grid,
		Potentials: pots,
		Beta:       beta,
		Boundary:   boundary,
		W1:         kernel.Matrix(pots.W1, grid.X),
		W2:         kernel.Matrix(pots.W2, grid.X),
		K:          kernel.Matrix(pots.K, grid.X),
	}, nil
}

// Velocities writes a1 = −(W1'ρ1 + K'ρ2) and a2 = −(W2'ρ2 − βK'ρ1). tmp is
// scratch space of the grid length. The densities are not modified.
func (p *Problem) Velocities(a1, a2, rho1, rho2, tmp []float64) {
	n := p.Grid.Len()
	r1 := mat.NewVecDense(n, rho1)
	r2 := mat.NewVecDense(n, rho2)
	v1 := mat.NewVecDense(n, a1)
	v2 := mat.NewVecDense(n, a2)
	scratch := mat.NewVecDense(n, tmp)

	v1.MulVec(p.W1, r1)
	scratch.MulVec(p.K, r2)
	v1.AddVec(v1, scratch)
	v1.ScaleVec(-1, v1)

	v2.MulVec(p.W2, r2)
	scratch.MulVec(p.K, r1)
	v2.ScaleVec(-1, v2)
	v2.AddScaledVec(v2, p.Beta, scratch)
}
