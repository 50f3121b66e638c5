package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/partsim/internal/analysis"
	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/experiment"
	"github.com/san-kum/partsim/internal/metrics"
	"github.com/san-kum/partsim/internal/storage"
	"github.com/san-kum/partsim/internal/system"
	"github.com/san-kum/partsim/internal/viz"
	"github.com/san-kum/partsim/internal/xlog"
	"github.com/spf13/cobra"
	"github.com/uber-go/tally/v4"
)

var (
	dataDir      string
	dt           float64
	duration     float64
	substeps     int
	seed         int64
	count        int
	staticPasses int
	configFile   string
	preset       string
	debug        bool
	stats        bool
	sets         []string

	particleIndex int
	axis          int

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	transient  float64

	runs int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "partsim",
		Short: "constrained particle dynamics lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(experiment.NewRegistry(), system.Options{})
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".partsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and save its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().BoolVar(&stats, "stats", false, "print solver counters after the run")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	simFlags(liveCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [scenario]",
		Short: "phase portrait of one particle",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	simFlags(phaseCmd)
	phaseCmd.Flags().IntVar(&particleIndex, "particle", 1, "particle index")
	phaseCmd.Flags().IntVar(&axis, "axis", 0, "axis (0=x, 1=y, 2=z)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "sweep a scenario parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScenario,
	}
	simFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "gravity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 100, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 400, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 4, "number of values")
	sweepCmd.Flags().Float64Var(&transient, "transient", 0, "time to skip before recording")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run a scenario over consecutive seeds in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	simFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 4, "number of seeds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of kinetic energy",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and series as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range reg.List() {
				s, _ := reg.Get(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, s.Description, strings.Join(config.ListPresets(name), ","))
			}
			return w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [scenario] [path]",
		Short: "write a config file for a scenario",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(args[0], preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(args[0]))
				}
			}
			cfg.Scenario = args[0]
			if _, err := experiment.NewRegistry().Get(cfg.Scenario); err != nil {
				return err
			}
			return config.Save(args[1], cfg)
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, liveCmd, phaseCmd, sweepCmd, ensembleCmd, listCmd, plotCmd, analyzeCmd, exportCmd, scenariosCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "solver substeps per step")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&count, "count", 0, "particle count (0 = scenario default)")
	cmd.Flags().IntVar(&staticPasses, "static-passes", config.DefaultStaticPasses, "relaxation passes before the run")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "scenario parameter key=value (repeatable)")
}

// resolveConfig layers preset, config file and explicit flags, in that order.
func resolveConfig(cmd *cobra.Command, scenario string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Scenario = scenario

	if preset != "" {
		cfg = config.GetPreset(scenario, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scenario))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Scenario = scenario
	}

	flags := cmd.Flags()
	if flags.Changed("dt") || (preset == "" && configFile == "") {
		cfg.Dt = dt
	}
	if flags.Changed("time") || (preset == "" && configFile == "") {
		cfg.Duration = duration
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("static-passes") {
		cfg.StaticPasses = staticPasses
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Params.Apply(sets); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) xlog.Logger {
	return xlog.NewDefaultLogger("partsim", cfg.Debug)
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

	scope, closer := tally.NewRootScope(tally.ScopeOptions{Prefix: "partsim"}, 0)
	defer closer.Close()

	log := newLogger(cfg)
	sys, err := experiment.NewRegistry().Build(cfg, system.Options{Logger: log, Scope: scope})
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, sys)
	for _, m := range metrics.Standard() {
		exp.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Infof("running %s: %d particles, %d steps", cfg.Scenario, sys.Len(), cfg.Steps())
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		log.Warnf("%v", runErr)
		result.Errors = append(result.Errors, runErr)
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if stats {
		printStats(scope)
	}
	return nil
}

func printStats(scope tally.Scope) {
	ts, ok := scope.(tally.TestScope)
	if !ok {
		return
	}
	snap := ts.Snapshot()
	fmt.Println("\nsolver:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range snap.Counters() {
		fmt.Fprintf(w, "  %s\t%d\n", c.Name(), c.Value())
	}
	for _, g := range snap.Gauges() {
		fmt.Fprintf(w, "  %s\t%g\n", g.Name(), g.Value())
	}
	for _, t := range snap.Timers() {
		var total float64
		for _, d := range t.Values() {
			total += d.Seconds()
		}
		if n := len(t.Values()); n > 0 {
			fmt.Fprintf(w, "  %s\t%d x %.3gms\n", t.Name(), n, 1000*total/float64(n))
		}
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.Create(filepath.Join(dataDir, "live.log"))
	if err != nil {
		return err
	}
	defer logFile.Close()

	opts := system.Options{Logger: xlog.NewWriterLogger(logFile, logFile, "partsim", cfg.Debug)}
	reg := experiment.NewRegistry()
	title := cfg.Scenario
	if preset != "" {
		title += "/" + preset
	}
	m, err := viz.NewModel(title, cfg.Dt, func() (*system.System, error) {
		return reg.Build(cfg, opts)
	})
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	sys, err := experiment.NewRegistry().Build(cfg, system.Options{Logger: newLogger(cfg)})
	if err != nil {
		return err
	}
	refs := sys.AllParticles()
	if particleIndex < 0 || particleIndex >= len(refs) {
		return fmt.Errorf("particle %d out of range [0, %d): %w", particleIndex, len(refs), dynamo.ErrInvalidParameter)
	}
	rec, err := analysis.TrackParticle(sys, refs[particleIndex], axis)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, sys)
	exp.AddObserver(rec)
	if _, err := exp.Run(cmd.Context()); err != nil {
		return err
	}
	if err := rec.Err(); err != nil {
		return err
	}

	pp := rec.Portrait()
	fmt.Printf("%s: particle %d, axis %d, %d samples\n\n", cfg.Scenario, particleIndex, axis, len(pp.Points))
	fmt.Print(pp.ToASCII(80, 24))
	fmt.Println("position →, velocity ↑")
	if crossings := pp.Section(0); len(crossings) > 0 {
		fmt.Printf("\n%d upward crossings of 0\n", len(crossings))
	}
	return nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if _, err := cfg.Params.Get(sweepParam); err != nil {
		return fmt.Errorf("%w (available: %v)", err, config.ParamNames())
	}

	sw := &analysis.Sweep{
		Registry:  experiment.NewRegistry(),
		Base:      cfg,
		Set:       func(p *config.Params, v float64) { _ = p.Set(sweepParam, v) },
		Quantity:  func(s dynamo.Snapshot) float64 { return s.KineticEnergy },
		Transient: transient,
		Options:   system.Options{Logger: newLogger(cfg)},
	}
	points, err := sw.Run(cmd.Context(), analysis.Linspace(sweepFrom, sweepTo, sweepSteps))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tDISTINCT\tMIN KE\tMAX KE\n", strings.ToUpper(sweepParam))
	for _, p := range points {
		lo, hi := 0.0, 0.0
		if len(p.Values) > 0 {
			lo, hi = p.Values[0], p.Values[0]
			for _, v := range p.Values {
				lo, hi = min(lo, v), max(hi, v)
			}
		}
		fmt.Fprintf(w, "%g\t%d\t%.4g\t%.4g\n", p.Param, len(p.Values), lo, hi)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	ens := &experiment.Ensemble{
		Registry: experiment.NewRegistry(),
		Base:     cfg,
		Runs:     runs,
		Options:  system.Options{Logger: newLogger(cfg)},
		Metrics:  metrics.Standard,
	}
	results, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tENERGY DRIFT\tMOMENTUM DRIFT\tBROKEN\tELAPSED")
	var mean float64
	for i, r := range results {
		mean += r.EnergyDrift / float64(len(results))
		fmt.Fprintf(w, "%d\t%d\t%.3e\t%.3e\t%g\t%v\n",
			cfg.Seed+int64(i),
			r.StepsTaken,
			r.EnergyDrift,
			r.Metrics["momentum_drift"],
			r.Metrics["broken_constraints"],
			r.Elapsed,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nmean energy drift: %.3e\n", mean)
	return nil
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tSTEPS\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%.2e\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Duration,
			run.Config.Dt,
			run.Steps,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Snapshot, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(series) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, series, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(series))

	plots := []struct {
		caption string
		fn      func(dynamo.Snapshot) float64
	}{
		{"total energy", dynamo.Snapshot.Energy},
		{"kinetic energy", func(s dynamo.Snapshot) float64 { return s.KineticEnergy }},
		{"potential energy", func(s dynamo.Snapshot) float64 { return s.PotentialEnergy }},
		{"|momentum|", func(s dynamo.Snapshot) float64 { return s.Momentum.Len() }},
		{"max constraint violation", func(s dynamo.Snapshot) float64 { return s.MaxViolation }},
	}
	for _, p := range plots {
		data := make([]float64, len(series))
		for i, s := range series {
			data[i] = p.fn(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}

	ke := make([]float64, len(series))
	for i, s := range series {
		ke[i] = s.KineticEnergy
	}
	spec, err := analysis.PowerSpectrum(ke, meta.Config.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Scenario)
	fmt.Printf("samples: %d, resolution: %.4g Hz\n", len(ke), spec.Freq[1])
	fmt.Printf("dominant kinetic energy frequency: %.4g Hz\n\n", spec.Dominant())

	n := min(len(spec.Power), 200)
	fmt.Println(asciigraph.Plot(spec.Power[1:n],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (first "+strconv.Itoa(n-1)+" bins)"),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadRun(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*storage.RunMetadata
		Series []dynamo.Snapshot `json:"series"`
	}{meta, series})
}
