package metrics

import (
	"github.com/san-kum/predprey/internal/continuum"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/particles"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// CentroidFunc returns the predator and prey centroids of a state.
type CentroidFunc func(x dynamo.State) (pred, prey r2.Vec)

// CentroidGap records the distance between the two population centroids at
// every observation. Value is the latest gap.
type CentroidGap struct {
	centroids CentroidFunc
	series    []float64
	times     []float64
}

func NewCentroidGap(f CentroidFunc) *CentroidGap {
	return &CentroidGap{centroids: f}
}

// DensityCentroids weighs grid nodes by the two stacked densities. The y
// component is always zero.
func DensityCentroids(x []float64) CentroidFunc {
	return func(s dynamo.State) (r2.Vec, r2.Vec) {
		rho1, rho2 := continuum.Unpack(s)
		return r2.Vec{X: weightedMean(x, rho1)}, r2.Vec{X: weightedMean(x, rho2)}
	}
}

func ParticleCentroids(n1 int) CentroidFunc {
	return func(s dynamo.State) (r2.Vec, r2.Vec) {
		pred, prey := particles.Split(s, n1)
		return particles.Centroid(pred), particles.Centroid(prey)
	}
}

func weightedMean(x, w []float64) float64 {
	mass := floats.Sum(w)
	if mass == 0 {
		return 0
	}
	return floats.Dot(x, w) / mass
}

func (c *CentroidGap) Name() string { return "centroid_gap" }

func (c *CentroidGap) Observe(x dynamo.State, t float64) {
	pred, prey := c.centroids(x)
	c.series = append(c.series, r2.Norm(r2.Sub(prey, pred)))
	c.times = append(c.times, t)
}

func (c *CentroidGap) Value() float64 {
	if len(c.series) == 0 {
		return 0
	}
	return c.series[len(c.series)-1]
}

// Series returns the observation times and gaps recorded since the last
// Reset.
func (c *CentroidGap) Series() (times, gaps []float64) {
	return c.times, c.series
}

func (c *CentroidGap) Reset() {
	c.series = nil
	c.times = nil
}
