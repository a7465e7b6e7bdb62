package analysis

import "fmt"

// SweepPoint is the outcome of one run in a parameter sweep.
type SweepPoint struct {
	Param float64
	Value float64
}

// Sweep evaluates run at n evenly spaced values in [lo, hi]. It stops at the
// first failing run and returns the points gathered so far.
func Sweep(lo, hi float64, n int, run func(param float64) (float64, error)) ([]SweepPoint, error) {
	if n < 1 {
		return nil, fmt.Errorf("sweep needs at least one point, got %d", n)
	}

	step := 0.0
	if n > 1 {
		step = (hi - lo) / float64(n-1)
	}

	points := make([]SweepPoint, 0, n)
	for i := 0; i < n; i++ {
		param := lo + float64(i)*step
		v, err := run(param)
		if err != nil {
			return points, fmt.Errorf("sweep at %g: %w", param, err)
		}
		points = append(points, SweepPoint{Param: param, Value: v})
	}

	return points, nil
}
