package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/continuum"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/integrators"
	"github.com/san-kum/predprey/internal/kernel"
	"github.com/san-kum/predprey/internal/metrics"
	"github.com/san-kum/predprey/internal/particles"
	"gonum.org/v1/gonum/spatial/r2"
)

// Built is a ready-to-run model: the system, its initial state and the
// metrics that make sense for it.
type Built struct {
	Model   string
	System  dynamo.System
	X0      dynamo.State
	Metrics []dynamo.Metric
	Gap     *metrics.CentroidGap

	// Grid is set for continuum runs, N1 for particle runs.
	Grid *continuum.Grid
	N1   int
}

type Registry struct {
	potentials  map[string]func(config.PotentialConfig) kernel.Potential
	profiles    map[string]func(config.ProfileConfig) continuum.Profile
	placements  map[string]func(*rand.Rand, int, config.PlacementConfig) []r2.Vec
	models      map[string]func(*Registry, *config.Config) (*Built, error)
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		potentials:  make(map[string]func(config.PotentialConfig) kernel.Potential),
		profiles:    make(map[string]func(config.ProfileConfig) continuum.Profile),
		placements:  make(map[string]func(*rand.Rand, int, config.PlacementConfig) []r2.Vec),
		models:      make(map[string]func(*Registry, *config.Config) (*Built, error)),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.potentials["zero"] = func(config.PotentialConfig) kernel.Potential { return kernel.Zero() }
	r.potentials["abs"] = func(c config.PotentialConfig) kernel.Potential { return kernel.Abs(c.C) }
	r.potentials["quadratic"] = func(c config.PotentialConfig) kernel.Potential { return kernel.Quadratic(c.C) }
	r.potentials["morse"] = func(c config.PotentialConfig) kernel.Potential {
		return kernel.Morse(c.Cr, c.Lr, c.Ca, c.La)
	}

	r.profiles["indicator"] = func(c config.ProfileConfig) continuum.Profile { return continuum.Indicator(c.Lo, c.Hi) }
	r.profiles["gaussian"] = func(c config.ProfileConfig) continuum.Profile {
		return continuum.Gaussian(c.Center, c.Width)
	}

	r.placements["uniform"] = func(rng *rand.Rand, n int, c config.PlacementConfig) []r2.Vec {
		return particles.Uniform(rng, n, c.Lo, c.Hi)
	}
	r.placements["ring"] = func(_ *rand.Rand, n int, c config.PlacementConfig) []r2.Vec {
		return particles.Ring(n, r2.Vec{X: c.CenterX, Y: c.CenterY}, c.Radius)
	}

	r.models[config.ModelContinuum] = buildContinuum
	r.models[config.ModelParticles] = buildParticles

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }

	return r
}

func (r *Registry) GetPotential(c config.PotentialConfig) (kernel.Potential, error) {
	fn, ok := r.potentials[c.Kind]
	if !ok {
		return kernel.Potential{}, fmt.Errorf("%w: unknown potential: %s", dynamo.ErrParameterBounds, c.Kind)
	}
	p := fn(c)
	if err := kernel.CheckOrigin(p); err != nil {
		return kernel.Potential{}, err
	}
	return p, nil
}

func (r *Registry) GetProfile(c config.ProfileConfig) (continuum.Profile, error) {
	fn, ok := r.profiles[c.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown initial density: %s", dynamo.ErrParameterBounds, c.Kind)
	}
	return fn(c), nil
}

func (r *Registry) GetPlacement(rng *rand.Rand, n int, c config.PlacementConfig) ([]r2.Vec, error) {
	fn, ok := r.placements[c.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown particle placement: %s", dynamo.ErrParameterBounds, c.Kind)
	}
	return fn(rng, n, c), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Build validates cfg and constructs the model it names.
func (r *Registry) Build(cfg *config.Config) (*Built, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fn, ok := r.models[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", cfg.Model)
	}
	return fn(r, cfg)
}

func (r *Registry) ListModels() []string    { return sortedKeys(r.models) }
func (r *Registry) ListPotentials() []string { return sortedKeys(r.potentials) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) potentialTriple(a, b, k config.PotentialConfig) ([3]kernel.Potential, error) {
	var out [3]kernel.Potential
	for i, c := range []config.PotentialConfig{a, b, k} {
		p, err := r.GetPotential(c)
		if err != nil {
			return out, err
		}
		out[i] = p
	}
	return out, nil
}

func buildContinuum(r *Registry, cfg *config.Config) (*Built, error) {
	c := cfg.Continuum

	grid, err := continuum.NewGrid(c.XMin, c.XMax, c.Nx)
	if err != nil {
		return nil, err
	}
	boundary, err := continuum.ParseBoundary(c.Boundary)
	if err != nil {
		return nil, err
	}
	pots, err := r.potentialTriple(c.W1, c.W2, c.K)
	if err != nil {
		return nil, err
	}
	problem, err := continuum.NewProblem(grid, continuum.Potentials{W1: pots[0], W2: pots[1], K: pots[2]}, c.Beta, boundary)
	if err != nil {
		return nil, err
	}

	rho1, rho2, err := r.densities(grid, c.Init1, c.Init2)
	if err != nil {
		return nil, err
	}

	n := grid.Len()
	gap := metrics.NewCentroidGap(metrics.DensityCentroids(grid.X))
	return &Built{
		Model:  config.ModelContinuum,
		System: continuum.NewSystem(problem),
		X0:     continuum.Pack(rho1, rho2),
		Metrics: []dynamo.Metric{
			metrics.NewMassDrift("mass_drift_1", 0, n),
			metrics.NewMassDrift("mass_drift_2", n, 2*n),
			metrics.NewMinDensity(),
			metrics.NewFinite(0),
			gap,
		},
		Gap:  gap,
		Grid: grid,
	}, nil
}

func (r *Registry) densities(grid *continuum.Grid, init1, init2 config.ProfileConfig) ([]float64, []float64, error) {
	sample := func(c config.ProfileConfig) ([]float64, error) {
		f, err := r.GetProfile(c)
		if err != nil {
			return nil, err
		}
		return continuum.NewDensity(grid, f)
	}

	switch {
	case init1.Kind == "mirror":
		rho2, err := sample(init2)
		if err != nil {
			return nil, nil, err
		}
		return continuum.Mirror(rho2), rho2, nil
	case init2.Kind == "mirror":
		rho1, err := sample(init1)
		if err != nil {
			return nil, nil, err
		}
		return rho1, continuum.Mirror(rho1), nil
	}

	rho1, err := sample(init1)
	if err != nil {
		return nil, nil, err
	}
	rho2, err := sample(init2)
	if err != nil {
		return nil, nil, err
	}
	return rho1, rho2, nil
}

func buildParticles(r *Registry, cfg *config.Config) (*Built, error) {
	c := cfg.Particles

	pots, err := r.potentialTriple(c.S1, c.S2, c.K)
	if err != nil {
		return nil, err
	}
	problem, err := particles.NewProblem(c.N1, c.N2, particles.Potentials{S1: pots[0], S2: pots[1], K: pots[2]}, c.Alpha)
	if err != nil {
		return nil, err
	}
	problem.Workers = c.Workers

	rng := rand.New(rand.NewSource(cfg.Seed))
	var pred, prey []r2.Vec
	switch {
	case c.Init1.Kind == "mirror":
		if prey, err = r.GetPlacement(rng, c.N2, c.Init2); err != nil {
			return nil, err
		}
		pred = particles.MirrorX(prey, c.Init1.Axis)
	case c.Init2.Kind == "mirror":
		if pred, err = r.GetPlacement(rng, c.N1, c.Init1); err != nil {
			return nil, err
		}
		prey = particles.MirrorX(pred, c.Init2.Axis)
	default:
		if pred, err = r.GetPlacement(rng, c.N1, c.Init1); err != nil {
			return nil, err
		}
		if prey, err = r.GetPlacement(rng, c.N2, c.Init2); err != nil {
			return nil, err
		}
	}

	sys := particles.NewSystem(problem)
	gap := metrics.NewCentroidGap(metrics.ParticleCentroids(c.N1))
	return &Built{
		Model:  config.ModelParticles,
		System: sys,
		X0:     particles.Pack(pred, prey),
		Metrics: []dynamo.Metric{
			metrics.NewFinite(0),
			metrics.NewCoincidence(sys),
			gap,
		},
		Gap: gap,
		N1:  c.N1,
	}, nil
}
