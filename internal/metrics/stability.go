package metrics

import (
	"github.com/san-kum/predprey/internal/dynamo"
)

// Finite reports the fraction of observed states whose entries are all
// finite and, when threshold is positive, bounded by it in magnitude.
type Finite struct {
	threshold  float64
	violations int
	samples    int
}

func NewFinite(threshold float64) *Finite {
	return &Finite{threshold: threshold}
}

func (f *Finite) Name() string { return "finite" }

func (f *Finite) Observe(x dynamo.State, t float64) {
	f.samples++
	if !x.IsValid() {
		f.violations++
		return
	}
	if f.threshold <= 0 {
		return
	}
	for _, v := range x {
		if v > f.threshold || v < -f.threshold {
			f.violations++
			return
		}
	}
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(f.violations)/float64(f.samples)
}

func (f *Finite) Reset() {
	f.violations = 0
	f.samples = 0
}
