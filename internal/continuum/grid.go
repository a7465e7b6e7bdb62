package continuum

import (
	"fmt"

	"github.com/san-kum/predprey/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Grid is a uniform 1-D grid of Nx points spanning [XMin, XMax], endpoints
// included. It is immutable after construction.
type Grid struct {
	X    []float64
	Dx   float64
	XMin float64
	XMax float64
}

func NewGrid(xmin, xmax float64, nx int) (*Grid, error) {
	if nx < 2 {
		return nil, fmt.Errorf("%w: grid needs at least 2 points, got %d", dynamo.ErrParameterBounds, nx)
	}
	if !(xmin < xmax) {
		return nil, fmt.Errorf("%w: xmin (%g) must be less than xmax (%g)", dynamo.ErrParameterBounds, xmin, xmax)
	}

	x := make([]float64, nx)
	floats.Span(x, xmin, xmax)

	return &Grid{
		X:    x,
		Dx:   (xmax - xmin) / float64(nx-1),
		XMin: xmin,
		XMax: xmax,
	}, nil
}

func (g *Grid) Len() int { return len(g.X) }
