package particles

import (
	"math"
	"math/rand"

	"github.com/san-kum/predprey/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pack lays predator and prey positions out as one flat state.
func Pack(pred, prey []r2.Vec) dynamo.State {
	x := make(dynamo.State, 0, 2*(len(pred)+len(prey)))
	for _, v := range pred {
		x = append(x, v.X, v.Y)
	}
	for _, v := range prey {
		x = append(x, v.X, v.Y)
	}
	return x
}

// Unpack copies the positions in x into pred and prey, which must have
// lengths N1 and N2.
func Unpack(x dynamo.State, pred, prey []r2.Vec) {
	for i := range pred {
		pred[i] = r2.Vec{X: x[2*i], Y: x[2*i+1]}
	}
	off := 2 * len(pred)
	for k := range prey {
		prey[k] = r2.Vec{X: x[off+2*k], Y: x[off+2*k+1]}
	}
}

// Split returns copies of the two populations stored in x.
func Split(x dynamo.State, n1 int) (pred, prey []r2.Vec) {
	pred = make([]r2.Vec, n1)
	prey = make([]r2.Vec, len(x)/2-n1)
	Unpack(x, pred, prey)
	return pred, prey
}

// Uniform draws n points uniformly in the square [lo, hi]².
func Uniform(rng *rand.Rand, n int, lo, hi float64) []r2.Vec {
	pts := make([]r2.Vec, n)
	w := hi - lo
	for i := range pts {
		pts[i] = r2.Vec{X: lo + w*rng.Float64(), Y: lo + w*rng.Float64()}
	}
	return pts
}

// Ring places n points evenly on a circle.
func Ring(n int, center r2.Vec, radius float64) []r2.Vec {
	pts := make([]r2.Vec, n)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = r2.Add(center, r2.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)})
	}
	return pts
}

// MirrorX reflects pts about the vertical line x = axis.
func MirrorX(pts []r2.Vec, axis float64) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, p := range pts {
		out[i] = r2.Vec{X: 2*axis - p.X, Y: p.Y}
	}
	return out
}

func Centroid(pts []r2.Vec) r2.Vec {
	var c r2.Vec
	for _, p := range pts {
		c = r2.Add(c, p)
	}
	if len(pts) == 0 {
		return c
	}
	return r2.Scale(1/float64(len(pts)), c)
}
