package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/predprey/internal/analysis"
	"github.com/san-kum/predprey/internal/automation"
	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/continuum"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/experiment"
	"github.com/san-kum/predprey/internal/export"
	"github.com/san-kum/predprey/internal/metrics"
	"github.com/san-kum/predprey/internal/particles"
	"github.com/san-kum/predprey/internal/storage"
	"github.com/san-kum/predprey/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string

	duration      float64
	steps         int
	dt            float64
	snapshotEvery int
	seed          int64
	noCFL         bool

	nx       int
	beta     float64
	boundary string

	n1      int
	n2      int
	alpha   float64
	workers int

	// sweep
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int

	// analyze
	lyapunov bool

	trials int

	stepsPerFrame int
	themeName     string
)

// main registers the predprey commands and executes the root command. It
// exits with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "predprey",
		Short:        "predator-prey nonlocal aggregation solver",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".predprey", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a continuum or particle simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "centroid gap spectrum of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "also estimate divergence of a perturbed rerun")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "final centroid gap across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepRuns,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter to sweep (beta, alpha, nx, n1, ...)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	seedsCmd := &cobra.Command{
		Use:   "seeds",
		Short: "repeat a particle run over consecutive seeds",
		RunE:  runSeeds,
	}
	addRunFlags(seedsCmd)
	seedsCmd.Flags().IntVar(&trials, "trials", 10, "number of seeds")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time particle velocity evaluation across sizes and worker counts",
		RunE:  benchParticles,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [output]",
		Short: "export the final snapshot of a run to SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&themeName, "theme", viz.ThemeEmber.Name, "color theme")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step a simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 5, "steps taken per frame")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, sweepCmd, scenarioCmd, seedsCmd, benchCmd, exportJSONCmd, exportSVGCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "final time T")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps Nt (dt = T/Nt)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "step size, used when --steps is 0")
	cmd.Flags().IntVar(&snapshotEvery, "every", config.DefaultSnapshotEvery, "record a snapshot every K steps")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for particle placement")
	cmd.Flags().BoolVar(&noCFL, "no-cfl", false, "skip the courant number check")
	cmd.Flags().IntVar(&nx, "nx", config.DefaultNx, "grid cells (continuum)")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "prey response beta (continuum)")
	cmd.Flags().StringVar(&boundary, "boundary", "outflow", "outflow or closed (continuum)")
	cmd.Flags().IntVar(&n1, "n1", config.DefaultParticles, "predators (particles)")
	cmd.Flags().IntVar(&n2, "n2", config.DefaultParticles, "prey (particles)")
	cmd.Flags().Float64Var(&alpha, "alpha", config.DefaultAlpha, "prey speed alpha (particles)")
	cmd.Flags().IntVar(&workers, "workers", 0, "aggregation goroutines, 0 for GOMAXPROCS (particles)")
}

// resolveConfig layers defaults, the preset, the config file and finally
// any flags set on the command line.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cfg.Model != model {
			return nil, fmt.Errorf("config file describes model %q, not %q", cfg.Model, model)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
		if !flags.Changed("steps") {
			cfg.Steps = 0
		}
	}
	if flags.Changed("every") {
		cfg.SnapshotEvery = snapshotEvery
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("no-cfl") {
		cfg.CheckCFL = !noCFL
	}
	if flags.Changed("nx") {
		cfg.Continuum.Nx = nx
	}
	if flags.Changed("beta") {
		cfg.Continuum.Beta = beta
	}
	if flags.Changed("boundary") {
		cfg.Continuum.Boundary = boundary
	}
	if flags.Changed("n1") {
		cfg.Particles.N1 = n1
	}
	if flags.Changed("n2") {
		cfg.Particles.N2 = n2
	}
	if flags.Changed("alpha") {
		cfg.Particles.Alpha = alpha
	}
	if flags.Changed("workers") {
		cfg.Particles.Workers = workers
	}

	return cfg, cfg.Validate()
}

// progress prints a bar every tenth of the run.
type progress struct {
	total, next int
}

func (p *progress) OnStep(step int, t float64, x dynamo.State) {
	if step < p.next {
		return
	}
	frac := float64(step) / float64(p.total)
	fmt.Printf("\r%s %3.0f%%  t=%.4f", viz.ProgressBar(frac, 30), 100*frac, t)
	p.next += max(p.total/10, 1)
	if step >= p.total {
		fmt.Println()
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}
	total, stepDt := cfg.Run().Discretize()
	exp.GetSimulator().AddObserver(&progress{total: total, next: max(total/10, 1)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(viz.Title.Render(fmt.Sprintf("running %s: %d steps of %g", cfg.Model, total, stepDt)))
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	var simErr *dynamo.SimulationError
	if errors.As(runErr, &simErr) {
		fmt.Println()
		fmt.Println(viz.StatusFailed.Render(fmt.Sprintf("stopped at step %d (t=%.4f): %v", simErr.Step, simErr.Time, simErr.Wrapped)))
	}

	runID, err := st.Save(cfg, preset, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Println(viz.Metric("run id", runID))
	fmt.Println(viz.Metric("steps", fmt.Sprintf("%d", result.StepsTaken)))
	fmt.Println(viz.Metric("snapshots", fmt.Sprintf("%d", len(result.States))))
	fmt.Println("\nmetrics:")
	for _, name := range sortedMetricNames(result.Metrics) {
		fmt.Println(viz.Metric("  "+name, fmt.Sprintf("%.6g", result.Metrics[name])))
	}
	if n := result.Metrics["coincident_pairs"]; n > 0 {
		fmt.Println(viz.StatusPaused.Render(fmt.Sprintf("warning: up to %.0f coincident particle pairs were treated as force-free", n)))
	}

	return runErr
}

func sortedMetricNames(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tPRESET\tTIME\tDURATION\tDT\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.5f\t%d\n",
			run.ID,
			run.Model,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *config.Config, *storage.Snapshots, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(snaps.States) == 0 {
		return nil, nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, cfg, snaps, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, cfg, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render(meta.ID))
	fmt.Println(viz.Metric("model", meta.Model))
	fmt.Println(viz.Metric("snapshots", fmt.Sprintf("%d", len(snaps.States))))
	fmt.Println()

	for i, state := range snaps.States {
		caption := fmt.Sprintf("step %d, t=%.4f", snaps.Steps[i], snaps.Times[i])
		switch cfg.Model {
		case config.ModelContinuum:
			rho1, rho2 := continuum.Unpack(state)
			fmt.Println(viz.DensityPlot(rho1, rho2, 80, 10, caption))
		case config.ModelParticles:
			pred, prey := particles.Split(state, cfg.Particles.N1)
			fmt.Println(viz.Subtle.Render(caption))
			fmt.Println(viz.SwarmPlot(pred, prey, 40, 10))
		}
		fmt.Println()
	}

	return nil
}

// centroidsFor rebuilds the centroid function of a stored run.
func centroidsFor(cfg *config.Config) (metrics.CentroidFunc, error) {
	if cfg.Model == config.ModelParticles {
		return metrics.ParticleCentroids(cfg.Particles.N1), nil
	}
	g, err := continuum.NewGrid(cfg.Continuum.XMin, cfg.Continuum.XMax, cfg.Continuum.Nx)
	if err != nil {
		return nil, err
	}
	return metrics.DensityCentroids(g.X), nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, cfg, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(snaps.Times) < 4 {
		return fmt.Errorf("need at least 4 snapshots for spectral analysis, got %d", len(snaps.Times))
	}

	centroids, err := centroidsFor(cfg)
	if err != nil {
		return err
	}
	gap := metrics.NewCentroidGap(centroids)
	for i, s := range snaps.States {
		gap.Observe(s, snaps.Times[i])
	}
	_, gaps := gap.Series()

	sampleDt := snaps.Times[1] - snaps.Times[0]
	freqs, power := analysis.PowerSpectrum(gaps, sampleDt)

	fmt.Println(viz.HeaderStyle.Render("centroid gap: " + meta.ID))
	fmt.Println(viz.SeriesPlot(gaps, 80, 10, "gap vs snapshot"))
	fmt.Println()
	fmt.Println(viz.SeriesPlot(power, 80, 8, fmt.Sprintf("amplitude spectrum, 0..%.3g Hz", freqs[len(freqs)-1])))
	fmt.Println()
	fmt.Println(viz.Metric("sample dt", fmt.Sprintf("%.5g", sampleDt)))
	fmt.Println(viz.Metric("dominant freq", fmt.Sprintf("%.5g", analysis.DominantFrequency(gaps, sampleDt))))
	fmt.Println(viz.Metric("final gap", fmt.Sprintf("%.5g", gap.Value())))

	if !lyapunov {
		return nil
	}

	built, err := experiment.NewRegistry().Build(cfg)
	if err != nil {
		return err
	}
	delta := built.X0.Clone()
	for i := range delta {
		delta[i] *= 1e-8
	}
	total, stepDt := cfg.Run().Discretize()
	registry := experiment.NewRegistry()
	newIntegrator := func() dynamo.Integrator {
		integ, _ := registry.GetIntegrator("euler")
		return integ
	}
	lambda := analysis.LyapunovExponent(built.System, newIntegrator, built.X0, delta, stepDt, total)
	fmt.Println(viz.Metric("lyapunov", fmt.Sprintf("%.5g", lambda)))

	return nil
}

func sweepRuns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	if err := automation.ApplyParam(&config.Config{}, sweepParam, sweepFrom); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	points, err := analysis.Sweep(sweepFrom, sweepTo, sweepPoints, func(v float64) (float64, error) {
		c := *cfg
		if err := automation.ApplyParam(&c, sweepParam, v); err != nil {
			return 0, err
		}
		if err := c.Validate(); err != nil {
			return 0, err
		}
		exp := experiment.New(&c)
		if err := exp.Setup(registry); err != nil {
			return 0, err
		}
		res, err := exp.Run(cmd.Context())
		if err != nil {
			return 0, err
		}
		fmt.Printf("%s=%-8.4g gap=%.6g\n", sweepParam, v, res.Metrics["centroid_gap"])
		return res.Metrics["centroid_gap"], nil
	})
	if err != nil {
		return err
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("final centroid gap, %s from %g to %g", sweepParam, sweepFrom, sweepTo)),
	))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("scenario: " + scenario.Name))
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}

	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), st.Save)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tMODEL\tPRESET\tSTEPS\tGAP")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6g\n", r.RunID, r.Config.Model, r.Step.Preset, r.Result.StepsTaken, r.Result.Metrics["centroid_gap"])
	}
	w.Flush()

	return err
}

func runSeeds(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, config.ModelParticles)
	if err != nil {
		return err
	}

	results, err := automation.RunSeeds(cmd.Context(), cfg, trials, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tGAP\tCOINCIDENT\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.6g\t%.0f\t%v\n", r.Seed, r.Gap, r.Coincident, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, std, stable := automation.SeedStats(results)
	fmt.Println()
	fmt.Println(viz.Metric("stable", fmt.Sprintf("%d/%d", stable, len(results))))
	fmt.Println(viz.Metric("gap mean", fmt.Sprintf("%.6g", mean)))
	fmt.Println(viz.Metric("gap std", fmt.Sprintf("%.6g", std)))
	return nil
}

func benchParticles(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tWORKERS\tEVALS\tTIME\tEVALS/SEC")

	for _, n := range []int{100, 200, 400, 800} {
		for _, wk := range []int{1, 0} {
			cfg := config.GetPreset(config.ModelParticles, "swarm")
			cfg.Particles.N1, cfg.Particles.N2, cfg.Particles.Workers = n, n, wk

			built, err := registry.Build(cfg)
			if err != nil {
				return err
			}

			dx := make(dynamo.State, len(built.X0))
			evals := 20
			start := time.Now()
			for i := 0; i < evals; i++ {
				built.System.Derive(dx, built.X0, 0)
			}
			elapsed := time.Since(start)

			label := fmt.Sprintf("%d", wk)
			if wk == 0 {
				label = "auto"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.1f\n", 2*n, label, evals, elapsed, float64(evals)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, cfg, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	final := snaps.States[len(snaps.States)-1]
	theme := viz.GetTheme(themeName)

	var svg string
	switch cfg.Model {
	case config.ModelContinuum:
		g, err := continuum.NewGrid(cfg.Continuum.XMin, cfg.Continuum.XMax, cfg.Continuum.Nx)
		if err != nil {
			return err
		}
		rho1, rho2 := continuum.Unpack(final)
		svg = export.Densities(g.X, rho1, rho2, 800, 400, theme)
	case config.ModelParticles:
		pred, prey := particles.Split(final, cfg.Particles.N1)
		svg = export.Swarm(pred, prey, 600, 600, theme)
	default:
		return fmt.Errorf("unknown model: %s", cfg.Model)
	}

	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (t=%.4f)\n", args[1], snaps.Times[len(snaps.Times)-1])
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	built, err := registry.Build(cfg)
	if err != nil {
		return err
	}
	integ, err := registry.GetIntegrator("euler")
	if err != nil {
		return err
	}

	total, stepDt := cfg.Run().Discretize()
	name := cfg.Model
	if preset != "" {
		name += "/" + preset
	}

	centroids, err := centroidsFor(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(built.System, integ, built.X0, viz.LiveOptions{
		Name:         strings.ToLower(name),
		Model:        cfg.Model,
		N1:           cfg.Particles.N1,
		Dt:           stepDt,
		Steps:        total,
		StepsPerTick: stepsPerFrame,
		Centroids:    centroids,
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
