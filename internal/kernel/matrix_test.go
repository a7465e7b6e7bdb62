package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMatrixAbs(t *testing.T) {
	xs := []float64{-1, 0, 0.5, 2}
	m := Matrix(Abs(1), xs)

	r, c := m.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 4, c)

	want := mat.NewDense(4, 4, []float64{
		0, -1, -1, -1,
		1, 0, -1, -1,
		1, 1, 0, -1,
		1, 1, 1, 0,
	})
	assert.True(t, mat.Equal(want, m), "got\n%v", mat.Formatted(m))
}

func TestMatrixIsAntisymmetric(t *testing.T) {
	xs := []float64{-0.9, -0.3, 0.1, 0.2, 0.75}
	m := Matrix(Morse(1, 0.4, 1.2, 1), xs)

	n := len(xs)
	for i := 0; i < n; i++ {
		assert.Equal(t, 0.0, m.At(i, i))
		for l := 0; l < n; l++ {
			assert.Equal(t, -m.At(l, i), m.At(i, l))
		}
	}
}

func TestMatrixZeroPotential(t *testing.T) {
	m := Matrix(Zero(), []float64{0, 1, 2})
	assert.Equal(t, 0.0, mat.Sum(m))
}

func TestRadialMatrix(t *testing.T) {
	dist := mat.NewDense(2, 3, []float64{0, 1, 2, 0.5, 0, 3})

	var dst mat.Dense
	RadialMatrix(&dst, Quadratic(2), dist)

	want := mat.NewDense(2, 3, []float64{0, 2, 4, 1, 0, 6})
	assert.True(t, mat.Equal(want, &dst))

	RadialMatrix(&dst, Abs(0.3), dist)
	want = mat.NewDense(2, 3, []float64{0, 0.3, 0.3, 0.3, 0, 0.3})
	assert.True(t, mat.Equal(want, &dst), "dst is reused with the same shape")
}
