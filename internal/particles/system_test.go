package particles_test

import (
	"context"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/integrators"
	"github.com/san-kum/predprey/internal/kernel"
	"github.com/san-kum/predprey/internal/particles"
	"gonum.org/v1/gonum/spatial/r2"
)

func linear() particles.Potentials {
	return particles.Potentials{S1: kernel.Abs(1), S2: kernel.Abs(1), K: kernel.Abs(1)}
}

func newSystem(n1, n2 int, pots particles.Potentials, alpha float64) *particles.System {
	p, err := particles.NewProblem(n1, n2, pots, alpha)
	Expect(err).NotTo(HaveOccurred())
	return particles.NewSystem(p)
}

// finiteWatch fails the first time a non-finite coordinate appears.
type finiteWatch struct{ checked int }

func (w *finiteWatch) OnStep(step int, t float64, x dynamo.State) {
	for i, v := range x {
		Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse(), "coordinate %d at step %d", i, step)
	}
	w.checked++
}

var _ = Describe("Problem", func() {
	It("rejects empty populations", func() {
		_, err := particles.NewProblem(0, 3, linear(), 0.3)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects a potential that diverges at the origin", func() {
		pots := linear()
		pots.K = kernel.Custom("inverse", func(r float64) float64 { return 1 / r })
		_, err := particles.NewProblem(3, 3, pots, 0.3)
		Expect(err).To(MatchError(dynamo.ErrSingularKernel))
	})

	It("rejects a negative prey speed", func() {
		_, err := particles.NewProblem(3, 3, linear(), -1)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("lays out predators before prey", func() {
		pred := []r2.Vec{{X: 1, Y: 2}}
		prey := []r2.Vec{{X: 3, Y: 4}, {X: 5, Y: 6}}
		x := particles.Pack(pred, prey)
		Expect([]float64(x)).To(Equal([]float64{1, 2, 3, 4, 5, 6}))

		gotPred, gotPrey := particles.Split(x, 1)
		Expect(gotPred).To(Equal(pred))
		Expect(gotPrey).To(Equal(prey))
	})
})

var _ = Describe("System", func() {
	It("computes pair velocities for a single predator and prey", func() {
		sys := newSystem(1, 1, linear(), 0.5)
		pred, prey := sys.Velocities(particles.Pack(
			[]r2.Vec{{X: 0, Y: 0}},
			[]r2.Vec{{X: 1, Y: 0}},
		))

		Expect(pred[0].X).To(BeNumerically("~", 1, 1e-15))
		Expect(pred[0].Y).To(BeNumerically("~", 0, 1e-15))
		Expect(prey[0].X).To(BeNumerically("~", 0.5, 1e-15))
		Expect(prey[0].Y).To(BeNumerically("~", 0, 1e-15))
	})

	It("divides each sum by the interacting population size", func() {
		pots := particles.Potentials{S1: kernel.Zero(), S2: kernel.Zero(), K: kernel.Abs(1)}
		sys := newSystem(1, 4, pots, 1)
		// Four prey on the unit circle pull with total unit weight, so the
		// predator velocity sums to zero by symmetry.
		prey := particles.Ring(4, r2.Vec{}, 1)
		pred, _ := sys.Velocities(particles.Pack([]r2.Vec{{}}, prey))
		Expect(r2.Norm(pred[0])).To(BeNumerically("<", 1e-12))

		// One prey alone contributes a unit vector regardless of distance.
		sys = newSystem(1, 1, pots, 1)
		pred, _ = sys.Velocities(particles.Pack([]r2.Vec{{}}, []r2.Vec{{X: 0, Y: 7}}))
		Expect(pred[0].Y).To(BeNumerically("~", 1, 1e-15))
	})

	It("leaves positions untouched without interactions", func() {
		zero := particles.Potentials{S1: kernel.Zero(), S2: kernel.Zero(), K: kernel.Zero()}
		sys := newSystem(20, 30, zero, 0.3)
		rng := rand.New(rand.NewSource(7))
		x0 := particles.Pack(particles.Uniform(rng, 20, 0, 1), particles.Uniform(rng, 30, 0, 1))

		sim := dynamo.New(sys, integrators.NewEuler())
		res, err := sim.Run(context.Background(), x0, dynamo.Config{Duration: 1, Steps: 50})
		Expect(err).NotTo(HaveOccurred())
		Expect([]float64(res.Final)).To(Equal([]float64(x0)))
	})

	It("flags coincident particles and keeps their mutual force at zero", func() {
		sys := newSystem(3, 2, linear(), 0.3)
		pred := []r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}}
		prey := []r2.Vec{{X: 1, Y: 1}, {X: 2, Y: 0}}

		vp, vq := sys.Velocities(particles.Pack(pred, prey))
		// Predators 0 and 1 share a point; predator 2 sits on prey 0.
		Expect(sys.Coincident()).To(Equal(2))
		Expect(sys.CountCoincident(particles.Pack(pred, prey))).To(Equal(2))
		for _, v := range append(vp, vq...) {
			Expect(math.IsNaN(v.X) || math.IsNaN(v.Y)).To(BeFalse())
		}
		Expect(vp[0]).To(Equal(vp[1]))

		sys.Velocities(particles.Pack(
			[]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
			[]r2.Vec{{X: 3, Y: 0}, {X: 4, Y: 0}},
		))
		Expect(sys.Coincident()).To(BeZero())
	})

	It("counts coincidences of a state without evaluating it", func() {
		sys := newSystem(2, 2, linear(), 0.3)
		spread := particles.Pack(
			[]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}},
			[]r2.Vec{{X: 2, Y: 0}, {X: 3, Y: 0}},
		)
		stacked := particles.Pack(
			[]r2.Vec{{X: 5, Y: 5}, {X: 5, Y: 5}},
			[]r2.Vec{{X: 5, Y: 5}, {X: 9, Y: 9}},
		)

		sys.Velocities(spread)
		// Three particles at one point form three pairs.
		Expect(sys.CountCoincident(stacked)).To(Equal(3))
		Expect(sys.Coincident()).To(BeZero(), "last evaluation was of the spread state")

		sys.Velocities(stacked)
		Expect(sys.Coincident()).To(Equal(3))
		Expect(sys.CountCoincident(spread)).To(BeZero())
	})

	It("gives identical results for any worker count", func() {
		rng := rand.New(rand.NewSource(11))
		x := particles.Pack(particles.Uniform(rng, 150, 0, 1), particles.Uniform(rng, 90, 0, 1))

		serial := newSystem(150, 90, linear(), 0.3)
		serial.Problem().Workers = 1
		parallel := newSystem(150, 90, linear(), 0.3)
		parallel.Problem().Workers = 8

		a := make(dynamo.State, len(x))
		b := make(dynamo.State, len(x))
		serial.Derive(a, x, 0)
		parallel.Derive(b, x, 0)
		Expect([]float64(b)).To(Equal([]float64(a)))
	})
})

var _ = Describe("Runs", func() {
	It("keeps every coordinate finite in the swarm scenario", func() {
		rng := rand.New(rand.NewSource(1))
		x0 := particles.Pack(particles.Uniform(rng, 400, 0, 0.5), particles.Uniform(rng, 400, 0, 0.5))
		sys := newSystem(400, 400, linear(), 0.3)

		watch := &finiteWatch{}
		sim := dynamo.New(sys, integrators.NewEuler())
		sim.AddObserver(watch)

		res, err := sim.Run(context.Background(), x0, dynamo.Config{Duration: 5, Dt: 0.005, SnapshotEvery: 100, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(1000))
		Expect(watch.checked).To(Equal(1000))
		Expect(res.Final.IsValid()).To(BeTrue())
		Expect(res.States).To(HaveLen(11))
	})

	It("moves both centroids together when prey speed is one", func() {
		rng := rand.New(rand.NewSource(3))
		prey := particles.Uniform(rng, 60, 0, 0.5)
		pred := particles.MirrorX(prey, 0.75)
		x0 := particles.Pack(pred, prey)
		gap0 := r2.Sub(particles.Centroid(prey), particles.Centroid(pred))

		sys := newSystem(60, 60, linear(), 1)
		sim := dynamo.New(sys, integrators.NewEuler())
		res, err := sim.Run(context.Background(), x0, dynamo.Config{Duration: 1, Steps: 200, SnapshotEvery: 20})
		Expect(err).NotTo(HaveOccurred())

		for _, x := range res.States {
			p, q := particles.Split(x, 60)
			gap := r2.Sub(particles.Centroid(q), particles.Centroid(p))
			Expect(gap.X).To(BeNumerically("~", gap0.X, 1e-10))
			Expect(gap.Y).To(BeNumerically("~", gap0.Y, 1e-10))
		}

		// The populations themselves do move.
		p, _ := particles.Split(res.Final, 60)
		Expect(particles.Centroid(p)).NotTo(Equal(particles.Centroid(pred)))
	})

	It("preserves a reflection symmetry shared by both species", func() {
		rng := rand.New(rand.NewSource(5))
		half := func(n int) []r2.Vec {
			pts := particles.Uniform(rng, n, 0, 1)
			for _, p := range pts {
				pts = append(pts, r2.Vec{X: p.X, Y: -p.Y})
			}
			return pts
		}
		pred, prey := half(25), half(35)
		pots := particles.Potentials{S1: kernel.Morse(1, 0.2, 0.5, 1), S2: kernel.Quadratic(1), K: kernel.Abs(1)}
		sys := newSystem(len(pred), len(prey), pots, 0.4)

		sim := dynamo.New(sys, integrators.NewEuler())
		res, err := sim.Run(context.Background(), particles.Pack(pred, prey), dynamo.Config{Duration: 0.5, Steps: 100})
		Expect(err).NotTo(HaveOccurred())

		p, q := particles.Split(res.Final, len(pred))
		for _, set := range [][]r2.Vec{p, q} {
			n := len(set) / 2
			for i := 0; i < n; i++ {
				Expect(set[i+n].X).To(BeNumerically("~", set[i].X, 1e-9))
				Expect(set[i+n].Y).To(BeNumerically("~", -set[i].Y, 1e-9))
			}
		}
	})
})
