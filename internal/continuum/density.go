package continuum

import (
	"fmt"
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Profile is an unnormalized initial density.
type Profile func(x float64) float64

// Indicator is 1 on [lo, hi] and 0 elsewhere.
func Indicator(lo, hi float64) Profile {
	return func(x float64) float64 {
		if x >= lo && x <= hi {
			return 1
		}
		return 0
	}
}

// Gaussian is exp(−(x−center)²/(2·width²)).
func Gaussian(center, width float64) Profile {
	return func(x float64) float64 {
		d := (x - center) / width
		return math.Exp(-0.5 * d * d)
	}
}

// NewDensity samples f on the grid and normalizes the result to sum 1.
func NewDensity(g *Grid, f Profile) ([]float64, error) {
	rho := make([]float64, g.Len())
	for i, x := range g.X {
		v := f(x)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: initial density is %g at x=%g", dynamo.ErrParameterBounds, v, x)
		}
		rho[i] = v
	}

	mass := floats.Sum(rho)
	if mass <= 0 {
		return nil, fmt.Errorf("%w: initial density has no mass on the grid", dynamo.ErrParameterBounds)
	}
	floats.Scale(1/mass, rho)
	return rho, nil
}

// Mirror returns rho reflected about the grid center.
func Mirror(rho []float64) []float64 {
	out := make([]float64, len(rho))
	for i, v := range rho {
		out[len(rho)-1-i] = v
	}
	return out
}

// Pack lays the two densities out as the flat state [ρ1..., ρ2...].
func Pack(rho1, rho2 []float64) dynamo.State {
	x := make(dynamo.State, 0, len(rho1)+len(rho2))
	x = append(x, rho1...)
	return append(x, rho2...)
}

// Unpack returns views of the two densities in x.
func Unpack(x dynamo.State) (rho1, rho2 []float64) {
	n := len(x) / 2
	return x[:n:n], x[n:]
}

// Mass returns the total mass Σρ.
func Mass(rho []float64) float64 {
	return floats.Sum(rho)
}
