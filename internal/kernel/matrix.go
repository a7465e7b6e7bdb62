package kernel

import "gonum.org/v1/gonum/mat"

// Matrix returns the len(xs)×len(xs) matrix M[i][l] = p.Signed(xs[i] - xs[l]).
// The diagonal is zero.
func Matrix(p Potential, xs []float64) *mat.Dense {
	n := len(xs)
	m := mat.NewDense(n, n, nil)
	if p.IsZero() {
		return m
	}
	for i := 0; i < n; i++ {
		for l := 0; l < n; l++ {
			if i == l {
				continue
			}
			m.Set(i, l, p.Signed(xs[i]-xs[l]))
		}
	}
	return m
}

// RadialMatrix evaluates p.Radial elementwise on a matrix of distances and
// stores the result in dst, which must be empty or have the same shape.
func RadialMatrix(dst *mat.Dense, p Potential, dist mat.Matrix) {
	dst.Apply(func(i, j int, v float64) float64 { return p.Radial(v) }, dist)
}
