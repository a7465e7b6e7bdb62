package config

import "sort"

var Presets = map[string]map[string]*Config{
	ModelContinuum: {
		"chase": {
			Model: ModelContinuum, Duration: 2, Steps: 1000, SnapshotEvery: 100, CheckCFL: true,
			Continuum: ContinuumConfig{
				XMin: -1, XMax: 1, Nx: 256, Beta: 0.3, Boundary: "outflow",
				W1: linear(), W2: linear(), K: linear(),
				Init1: ProfileConfig{Kind: "indicator", Lo: -0.99, Hi: -0.98},
				Init2: ProfileConfig{Kind: "indicator", Lo: -0.05, Hi: 0.05},
			},
		},
		"mirror": {
			Model: ModelContinuum, Duration: 1, Steps: 400, SnapshotEvery: 40, CheckCFL: true,
			Continuum: ContinuumConfig{
				XMin: -1, XMax: 1, Nx: 128, Beta: 0.3, Boundary: "outflow",
				W1: linear(), W2: linear(), K: PotentialConfig{Kind: "zero"},
				Init1: ProfileConfig{Kind: "indicator", Lo: -0.7, Hi: -0.2},
				Init2: ProfileConfig{Kind: "mirror"},
			},
		},
		"swarm": {
			Model: ModelContinuum, Duration: 4, Steps: 2000, SnapshotEvery: 200, CheckCFL: true,
			Continuum: ContinuumConfig{
				XMin: -2, XMax: 2, Nx: 200, Beta: 1, Boundary: "closed",
				W1:    PotentialConfig{Kind: "morse", Cr: 1, Lr: 0.2, Ca: 0.5, La: 1},
				W2:    PotentialConfig{Kind: "morse", Cr: 1, Lr: 0.2, Ca: 0.5, La: 1},
				K:     PotentialConfig{Kind: "quadratic", C: 0.5},
				Init1: ProfileConfig{Kind: "gaussian", Center: -0.8, Width: 0.2},
				Init2: ProfileConfig{Kind: "gaussian", Center: 0.6, Width: 0.3},
			},
		},
	},
	ModelParticles: {
		"swarm": {
			Model: ModelParticles, Duration: 5, Dt: 0.005, SnapshotEvery: 100, Seed: 1,
			Particles: ParticlesConfig{
				N1: 400, N2: 400, Alpha: 0.3,
				S1: linear(), S2: linear(), K: linear(),
				Init1: PlacementConfig{Kind: "uniform", Lo: 0, Hi: 0.5},
				Init2: PlacementConfig{Kind: "uniform", Lo: 0, Hi: 0.5},
			},
		},
		"mirror": {
			Model: ModelParticles, Duration: 2, Steps: 400, SnapshotEvery: 40, Seed: 1,
			Particles: ParticlesConfig{
				N1: 100, N2: 100, Alpha: 1,
				S1: linear(), S2: linear(), K: linear(),
				Init1: PlacementConfig{Kind: "mirror", Axis: 0.75},
				Init2: PlacementConfig{Kind: "uniform", Lo: 0, Hi: 0.5},
			},
		},
		"ring": {
			Model: ModelParticles, Duration: 3, Steps: 600, SnapshotEvery: 60, Seed: 1,
			Particles: ParticlesConfig{
				N1: 50, N2: 300, Alpha: 0.8,
				S1: PotentialConfig{Kind: "quadratic", C: 1},
				S2: PotentialConfig{Kind: "morse", Cr: 0.6, Lr: 0.1, Ca: 0.3, La: 0.8},
				K:  linear(),
				Init1: PlacementConfig{Kind: "ring", Radius: 0.1},
				Init2: PlacementConfig{Kind: "ring", Radius: 1},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
