package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/integrators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerSpectrumFindsSine(t *testing.T) {
	const dt = 0.01
	series := make([]float64, 200)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*2*float64(i)*dt)
	}

	freqs, power := PowerSpectrum(series, dt)
	require.Len(t, freqs, 101)
	require.Len(t, power, 101)
	assert.InDelta(t, 0.5, freqs[1], 1e-12)
	assert.InDelta(t, 0, power[0], 1e-9, "mean is removed")
	assert.InDelta(t, 0.5, power[4], 1e-9)

	assert.InDelta(t, 2.0, DominantFrequency(series, dt), 1e-12)
}

func TestPowerSpectrumDegenerate(t *testing.T) {
	freqs, power := PowerSpectrum([]float64{1}, 0.1)
	assert.Nil(t, freqs)
	assert.Nil(t, power)

	assert.Equal(t, 0.0, DominantFrequency([]float64{2, 2, 2, 2}, 0.1))
}

type growth struct{ rate float64 }

func (g growth) Derive(dst, x dynamo.State, t float64) {
	for i := range x {
		dst[i] = g.rate * x[i]
	}
}

func (g growth) Dim() int { return 2 }

func TestLyapunovExponentLinearGrowth(t *testing.T) {
	const dt = 0.01
	newEuler := func() dynamo.Integrator { return integrators.NewEuler() }

	lambda := LyapunovExponent(growth{rate: 1.5}, newEuler, dynamo.State{1, 0}, dynamo.State{1e-6, 0}, dt, 500)
	assert.InDelta(t, math.Log(1+1.5*dt)/dt, lambda, 1e-6)

	lambda = LyapunovExponent(growth{rate: -1}, newEuler, dynamo.State{1, 1}, dynamo.State{0, 1e-6}, dt, 500)
	assert.Less(t, lambda, 0.0)

	assert.Equal(t, 0.0, LyapunovExponent(growth{}, newEuler, dynamo.State{1, 1}, dynamo.State{0, 0}, dt, 10))
}

func TestSweep(t *testing.T) {
	points, err := Sweep(0, 1, 5, func(p float64) (float64, error) { return 2 * p, nil })
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, 0.25, points[1].Param)
	assert.Equal(t, 2.0, points[4].Value)

	boom := errors.New("boom")
	points, err = Sweep(0, 1, 5, func(p float64) (float64, error) {
		if p > 0.5 {
			return 0, boom
		}
		return p, nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, points, 3)

	_, err = Sweep(0, 1, 0, nil)
	assert.Error(t, err)
}
