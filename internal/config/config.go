package config

import (
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/san-kum/predprey/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	ModelContinuum = "continuum"
	ModelParticles = "particles"
)

const (
	DefaultDuration      = 2.0
	DefaultSteps         = 1000
	DefaultSnapshotEvery = 100
	DefaultNx            = 256
	DefaultBeta          = 0.3
	DefaultAlpha         = 0.3
	DefaultParticles     = 400
)

type Config struct {
	Model         string          `yaml:"model"`
	Duration      float64         `yaml:"duration"`
	Steps         int             `yaml:"steps"`
	Dt            float64         `yaml:"dt"`
	SnapshotEvery int             `yaml:"snapshot_every"`
	Seed          int64           `yaml:"seed"`
	CheckCFL      bool            `yaml:"check_cfl"`
	Continuum     ContinuumConfig `yaml:"continuum"`
	Particles     ParticlesConfig `yaml:"particles"`
}

// PotentialConfig selects a named potential. C scales abs and quadratic;
// the remaining fields parameterize morse.
type PotentialConfig struct {
	Kind string  `yaml:"kind"`
	C    float64 `yaml:"c,omitempty"`
	Cr   float64 `yaml:"cr,omitempty"`
	Lr   float64 `yaml:"lr,omitempty"`
	Ca   float64 `yaml:"ca,omitempty"`
	La   float64 `yaml:"la,omitempty"`
}

// ProfileConfig is a continuum initial density: indicator on [lo, hi],
// gaussian(center, width), or mirror of the other species.
type ProfileConfig struct {
	Kind   string  `yaml:"kind"`
	Lo     float64 `yaml:"lo,omitempty"`
	Hi     float64 `yaml:"hi,omitempty"`
	Center float64 `yaml:"center,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
}

// PlacementConfig is an initial particle distribution: uniform in
// [lo, hi]², ring(center, radius), or mirror of the other species about
// x = axis.
type PlacementConfig struct {
	Kind    string  `yaml:"kind"`
	Lo      float64 `yaml:"lo,omitempty"`
	Hi      float64 `yaml:"hi,omitempty"`
	CenterX float64 `yaml:"center_x,omitempty"`
	CenterY float64 `yaml:"center_y,omitempty"`
	Radius  float64 `yaml:"radius,omitempty"`
	Axis    float64 `yaml:"axis,omitempty"`
}

type ContinuumConfig struct {
	XMin     float64         `yaml:"xmin"`
	XMax     float64         `yaml:"xmax"`
	Nx       int             `yaml:"nx"`
	Beta     float64         `yaml:"beta"`
	Boundary string          `yaml:"boundary"`
	W1       PotentialConfig `yaml:"w1"`
	W2       PotentialConfig `yaml:"w2"`
	K        PotentialConfig `yaml:"k"`
	Init1    ProfileConfig   `yaml:"init1"`
	Init2    ProfileConfig   `yaml:"init2"`
}

type ParticlesConfig struct {
	N1      int             `yaml:"n1"`
	N2      int             `yaml:"n2"`
	Alpha   float64         `yaml:"alpha"`
	Workers int             `yaml:"workers"`
	S1      PotentialConfig `yaml:"s1"`
	S2      PotentialConfig `yaml:"s2"`
	K       PotentialConfig `yaml:"k"`
	Init1   PlacementConfig `yaml:"init1"`
	Init2   PlacementConfig `yaml:"init2"`
}

func linear() PotentialConfig { return PotentialConfig{Kind: "abs", C: 1} }

func DefaultConfig() *Config {
	return &Config{
		Model:         ModelContinuum,
		Duration:      DefaultDuration,
		Steps:         DefaultSteps,
		SnapshotEvery: DefaultSnapshotEvery,
		Seed:          1,
		CheckCFL:      true,
		Continuum: ContinuumConfig{
			XMin:     -1,
			XMax:     1,
			Nx:       DefaultNx,
			Beta:     DefaultBeta,
			Boundary: "outflow",
			W1:       linear(),
			W2:       linear(),
			K:        linear(),
			Init1:    ProfileConfig{Kind: "indicator", Lo: -0.99, Hi: -0.98},
			Init2:    ProfileConfig{Kind: "indicator", Lo: -0.05, Hi: 0.05},
		},
		Particles: ParticlesConfig{
			N1:    DefaultParticles,
			N2:    DefaultParticles,
			Alpha: DefaultAlpha,
			S1:    linear(),
			S2:    linear(),
			K:     linear(),
			Init1: PlacementConfig{Kind: "uniform", Lo: 0, Hi: 0.5},
			Init2: PlacementConfig{Kind: "uniform", Lo: 0, Hi: 0.5},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Run returns the time discretization of the config.
func (c *Config) Run() dynamo.Config {
	return dynamo.Config{
		Duration:      c.Duration,
		Steps:         c.Steps,
		Dt:            c.Dt,
		SnapshotEvery: c.SnapshotEvery,
		CheckCFL:      c.CheckCFL && c.Model == ModelContinuum,
		ValidateState: true,
	}
}

// Validate reports configuration errors before any state is built. Every
// error wraps dynamo.ErrParameterBounds.
func (c *Config) Validate() error {
	if err := c.Run().Validate(); err != nil {
		return err
	}

	switch c.Model {
	case ModelContinuum:
		return c.Continuum.validate()
	case ModelParticles:
		return c.Particles.validate()
	default:
		return fmt.Errorf("%w: unknown model %q", dynamo.ErrParameterBounds, c.Model)
	}
}

// validate checks the parameters the named kind reads.
func (p PotentialConfig) validate(role string) error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	switch p.Kind {
	case "abs", "quadratic":
		if !finite(p.C) {
			return fmt.Errorf("%w: %s: c must be finite, got %g", dynamo.ErrParameterBounds, role, p.C)
		}
	case "morse":
		if !finite(p.Cr) || !finite(p.Ca) {
			return fmt.Errorf("%w: %s: cr and ca must be finite, got %g and %g", dynamo.ErrParameterBounds, role, p.Cr, p.Ca)
		}
		if !(p.Lr > 0) || !(p.La > 0) || !finite(p.Lr) || !finite(p.La) {
			return fmt.Errorf("%w: %s: lr and la must be positive and finite, got %g and %g", dynamo.ErrParameterBounds, role, p.Lr, p.La)
		}
	}
	return nil
}

func validatePotentials(pots map[string]PotentialConfig) error {
	for _, role := range slices.Sorted(maps.Keys(pots)) {
		if err := pots[role].validate(role); err != nil {
			return err
		}
	}
	return nil
}

func (c *ContinuumConfig) validate() error {
	if c.Nx < 2 {
		return fmt.Errorf("%w: nx must be at least 2, got %d", dynamo.ErrParameterBounds, c.Nx)
	}
	if !(c.XMin < c.XMax) {
		return fmt.Errorf("%w: xmin %g must be below xmax %g", dynamo.ErrParameterBounds, c.XMin, c.XMax)
	}
	if c.Beta < 0 {
		return fmt.Errorf("%w: beta must not be negative, got %g", dynamo.ErrParameterBounds, c.Beta)
	}
	if c.Init1.Kind == "mirror" && c.Init2.Kind == "mirror" {
		return fmt.Errorf("%w: only one species can mirror the other", dynamo.ErrParameterBounds)
	}
	return validatePotentials(map[string]PotentialConfig{"w1": c.W1, "w2": c.W2, "k": c.K})
}

func (c *ParticlesConfig) validate() error {
	if c.N1 <= 0 || c.N2 <= 0 {
		return fmt.Errorf("%w: n1 and n2 must be positive, got %d and %d", dynamo.ErrParameterBounds, c.N1, c.N2)
	}
	if c.Alpha < 0 {
		return fmt.Errorf("%w: alpha must not be negative, got %g", dynamo.ErrParameterBounds, c.Alpha)
	}
	if c.Init1.Kind == "mirror" && c.Init2.Kind == "mirror" {
		return fmt.Errorf("%w: only one species can mirror the other", dynamo.ErrParameterBounds)
	}
	if (c.Init1.Kind == "mirror" || c.Init2.Kind == "mirror") && c.N1 != c.N2 {
		return fmt.Errorf("%w: mirrored placement needs n1 == n2, got %d and %d", dynamo.ErrParameterBounds, c.N1, c.N2)
	}
	return validatePotentials(map[string]PotentialConfig{"s1": c.S1, "s2": c.S2, "k": c.K})
}
