package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the one-sided amplitude spectrum of a uniformly
// sampled series with its mean removed. freqs[k] = k/(n·dt).
func PowerSpectrum(series []float64, dt float64) (freqs, power []float64) {
	n := len(series)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n/2 + 1
	freqs = make([]float64, half)
	power = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		power[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}

	return freqs, power
}

// DominantFrequency is the nonzero frequency with the largest amplitude, or
// zero for a constant series.
func DominantFrequency(series []float64, dt float64) float64 {
	freqs, power := PowerSpectrum(series, dt)
	best, bestPower := 0.0, 0.0
	for k := 1; k < len(power); k++ {
		if power[k] > bestPower {
			best, bestPower = freqs[k], power[k]
		}
	}
	return best
}
