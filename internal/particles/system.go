package particles

import (
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/kernel"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// rowChunk is the smallest number of particles handed to one worker.
const rowChunk = 16

// System evaluates particle velocities. All pairwise distances are
// recomputed on every call to Derive. A System is not safe for concurrent
// use; Derive itself fans out over Problem.Workers goroutines.
type System struct {
	p *Problem

	pred, prey []r2.Vec

	// pairwise distances, overwritten with 1 where two particles coincide
	d11, d22, d12 *mat.Dense
	// φ'(r) evaluated on the raw distances
	g11, g22, g12 *mat.Dense

	coincident int
}

func NewSystem(p *Problem) *System {
	return &System{
		p:    p,
		pred: make([]r2.Vec, p.N1),
		prey: make([]r2.Vec, p.N2),
		d11:  mat.NewDense(p.N1, p.N1, nil),
		d22:  mat.NewDense(p.N2, p.N2, nil),
		d12:  mat.NewDense(p.N1, p.N2, nil),
		g11:  mat.NewDense(p.N1, p.N1, nil),
		g22:  mat.NewDense(p.N2, p.N2, nil),
		g12:  mat.NewDense(p.N1, p.N2, nil),
	}
}

func (s *System) Problem() *Problem { return s.p }

func (s *System) Dim() int { return s.p.Dim() }

// Coincident reports how many distinct particle pairs shared a position in
// the most recent Derive call. Their mutual force was taken to be zero.
func (s *System) Coincident() int { return s.coincident }

// CountCoincident returns the number of distinct pairs sharing a position in
// x, by the same distance test Derive applies. It does not touch the
// scratch state of s.
func (s *System) CountCoincident(x dynamo.State) int {
	pred, prey := Split(x, s.p.N1)
	n := 0
	for _, group := range [][]r2.Vec{pred, prey} {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				if distance(group[i], group[j]) == 0 {
					n++
				}
			}
		}
	}
	for _, a := range pred {
		for _, b := range prey {
			if distance(a, b) == 0 {
				n++
			}
		}
	}
	return n
}

func distance(a, b r2.Vec) float64 {
	d := r2.Sub(a, b)
	return math.Sqrt(r2.Dot(d, d))
}

func (s *System) Derive(dst, x dynamo.State, t float64) {
	Unpack(x, s.pred, s.prey)

	w := s.p.Workers
	Distances(s.d11, s.pred, s.pred, w)
	Distances(s.d22, s.prey, s.prey, w)
	Distances(s.d12, s.pred, s.prey, w)

	pots := s.p.Potentials
	kernel.RadialMatrix(s.g11, pots.S1, s.d11)
	kernel.RadialMatrix(s.g22, pots.S2, s.d22)
	kernel.RadialMatrix(s.g12, pots.K, s.d12)

	// Self pairs are counted twice in the symmetric matrices and the
	// diagonal is always zero.
	s.coincident = (replaceZeros(s.d11)-s.p.N1)/2 +
		(replaceZeros(s.d22)-s.p.N2)/2 +
		replaceZeros(s.d12)

	n1, n2 := float64(s.p.N1), float64(s.p.N2)
	alpha := s.p.Alpha

	dynamo.ParallelFor(s.p.N1, w, rowChunk, func(start, end int) {
		for i := start; i < end; i++ {
			self := meanForce(s.pred[i], s.pred, s.d11.RawRowView(i), s.g11.RawRowView(i), n1)
			cross := meanForce(s.pred[i], s.prey, s.d12.RawRowView(i), s.g12.RawRowView(i), n2)
			v := r2.Scale(-1, r2.Add(self, cross))
			dst[2*i], dst[2*i+1] = v.X, v.Y
		}
	})

	off := 2 * s.p.N1
	dynamo.ParallelFor(s.p.N2, w, rowChunk, func(start, end int) {
		dcol := make([]float64, s.p.N1)
		gcol := make([]float64, s.p.N1)
		for k := start; k < end; k++ {
			mat.Col(dcol, k, s.d12)
			mat.Col(gcol, k, s.g12)
			self := meanForce(s.prey[k], s.prey, s.d22.RawRowView(k), s.g22.RawRowView(k), n2)
			chase := meanForce(s.prey[k], s.pred, dcol, gcol, n1)
			v := r2.Add(r2.Scale(-1, self), r2.Scale(alpha, chase))
			dst[off+2*k], dst[off+2*k+1] = v.X, v.Y
		}
	})
}

// meanForce returns (1/n) Σ_j (at − others[j]) g[j]/dist[j]. The terms are
// summed in index order so the result does not depend on how rows are
// distributed across workers.
func meanForce(at r2.Vec, others []r2.Vec, dist, g []float64, n float64) r2.Vec {
	var sum r2.Vec
	for j, o := range others {
		if g[j] == 0 {
			continue
		}
		sum = r2.Add(sum, r2.Scale(g[j]/dist[j], r2.Sub(at, o)))
	}
	return r2.Scale(1/n, sum)
}

// Distances fills dst with |a_i − b_j|. dst must be len(a)×len(b).
func Distances(dst *mat.Dense, a, b []r2.Vec, workers int) {
	dynamo.ParallelFor(len(a), workers, rowChunk, func(start, end int) {
		for i := start; i < end; i++ {
			row := dst.RawRowView(i)
			for j := range b {
				row[j] = distance(a[i], b[j])
			}
		}
	})
}

// replaceZeros sets every zero entry of m to 1 and returns how many there
// were.
func replaceZeros(m *mat.Dense) int {
	r, c := m.Dims()
	n := 0
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := 0; j < c; j++ {
			if row[j] == 0 {
				row[j] = 1
				n++
			}
		}
	}
	return n
}

// Velocities returns the per-particle velocities induced by x.
func (s *System) Velocities(x dynamo.State) (pred, prey []r2.Vec) {
	dx := make(dynamo.State, len(x))
	s.Derive(dx, x, 0)
	return Split(dx, s.p.N1)
}
