package automation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/experiment"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run: a preset of Model with Params applied on top.
type ScenarioStep struct {
	Model  string             `yaml:"model"`
	Preset string             `yaml:"preset"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult pairs a finished run with the config that produced it.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *dynamo.Result
	RunID  string
}

// SaveFunc persists a run and returns its id.
type SaveFunc func(cfg *config.Config, label string, result *dynamo.Result) (string, error)

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// ApplyParam sets a named numeric field of cfg.
func ApplyParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "time":
		cfg.Duration = v
	case "steps":
		cfg.Steps = int(v)
	case "dt":
		cfg.Dt, cfg.Steps = v, 0
	case "every":
		cfg.SnapshotEvery = int(v)
	case "seed":
		cfg.Seed = int64(v)
	case "nx":
		cfg.Continuum.Nx = int(v)
	case "beta":
		cfg.Continuum.Beta = v
	case "n1":
		cfg.Particles.N1 = int(v)
	case "n2":
		cfg.Particles.N2 = int(v)
	case "alpha":
		cfg.Particles.Alpha = v
	case "workers":
		cfg.Particles.Workers = int(v)
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}

// StepConfig resolves the config of a scenario step. Params are applied in
// name order, so an explicit steps wins over dt.
func StepConfig(step ScenarioStep) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = step.Model
	if step.Preset != "" {
		if cfg = config.GetPreset(step.Model, step.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %s for model %s", step.Preset, step.Model)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(step.Params)) {
		if err := ApplyParam(cfg, k, step.Params[k]); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in a scenario. save may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, save SaveFunc) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Printf("running step %d/%d: %s %s\n", i+1, len(scenario.Steps), step.Model, step.Preset)

		cfg, err := StepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Config: cfg, Result: result}
		if save != nil {
			label := step.SaveAs
			if label == "" {
				label = step.Preset
			}
			if sr.RunID, err = save(cfg, label, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// SeedResult holds the outcome of one seeded particle run.
type SeedResult struct {
	Seed       int64
	Gap        float64
	Coincident float64
	Stable     bool
}

// RunSeeds repeats a particle run with seeds base, base+1, ... and reports
// the final centroid gap of each. A trial that fails is recorded as unstable;
// cancellation stops the trials and returns the completed ones with the error.
func RunSeeds(ctx context.Context, cfg *config.Config, trials int, registry *experiment.Registry) ([]SeedResult, error) {
	if cfg.Model != config.ModelParticles {
		return nil, fmt.Errorf("seed trials need model %s, got %s", config.ModelParticles, cfg.Model)
	}
	results := make([]SeedResult, 0, trials)

	for trial := 0; trial < trials; trial++ {
		c := *cfg
		c.Seed = cfg.Seed + int64(trial)

		exp := experiment.New(&c)
		if err := exp.Setup(registry); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if result == nil || errors.Is(err, dynamo.ErrContextCanceled) {
			return results, err
		}

		results = append(results, SeedResult{
			Seed:       c.Seed,
			Gap:        result.Metrics["centroid_gap"],
			Coincident: result.Metrics["coincident_pairs"],
			Stable:     err == nil,
		})

		if (trial+1)%10 == 0 {
			fmt.Printf("seeds: %d/%d trials complete\n", trial+1, trials)
		}
	}

	return results, nil
}

// SeedStats summarizes the gaps of the stable trials.
func SeedStats(results []SeedResult) (mean, std float64, stable int) {
	gaps := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Stable {
			gaps = append(gaps, r.Gap)
		}
	}
	switch len(gaps) {
	case 0:
		return math.NaN(), math.NaN(), 0
	case 1:
		return gaps[0], 0, 1
	}
	mean, std = stat.MeanStdDev(gaps, nil)
	return mean, std, len(gaps)
}
