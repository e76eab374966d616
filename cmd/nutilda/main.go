package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nutilda/internal/analysis"
	"github.com/san-kum/nutilda/internal/automation"
	"github.com/san-kum/nutilda/internal/config"
	"github.com/san-kum/nutilda/internal/experiment"
	"github.com/san-kum/nutilda/internal/export"
	"github.com/san-kum/nutilda/internal/optim"
	"github.com/san-kum/nutilda/internal/sim"
	"github.com/san-kum/nutilda/internal/storage"
	"github.com/san-kum/nutilda/internal/viz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	logJSON    bool
	configFile string

	iterations  int
	dt          float64
	solver      string
	ddt         string
	lengthScale string
	policy      string
	ft2         bool
	helicity    bool
	resume      string
	axis        int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	svgDir    string
	gridSpecs []string
	calMetric string
	calTarget float64
)

// main registers the commands and exits with status 1 if one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "nutilda",
		Short: "Spalart-Allmaras closure runs on prescribed flows",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nutilda", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a case and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCase,
	}
	caseFlags(runCmd)
	runCmd.Flags().StringVar(&resume, "resume", "", "start from the final nuTilda of a stored run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a case with the live monitor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	caseFlags(liveCmd)
	liveCmd.Flags().IntVar(&axis, "axis", 1, "profile direction (0=x, 1=y, 2=z)")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [length-scale] [length-scale] ...",
		Short: "run one case with several length scales concurrently",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareLengthScales,
	}
	caseFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one coefficient and report the peak nut/nu",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepCoeff,
	}
	caseFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "Cb1", "coefficient to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "lowest value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.2, "highest value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot residual history and final nuTilda profile",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&axis, "axis", 1, "profile direction (0=x, 1=y, 2=z)")
	plotCmd.Flags().StringVar(&svgDir, "svg", "", "also write the plots as SVG files to this directory")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate [preset]",
		Short: "grid search coefficients to match a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  calibrate,
	}
	caseFlags(calibrateCmd)
	calibrateCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "coefficient values, e.g. Cb1=0.12,0.1355,0.15 (repeatable)")
	calibrateCmd.Flags().StringVar(&calMetric, "metric", "nut_ratio_max", "metric to match")
	calibrateCmd.Flags().Float64Var(&calTarget, "target", 0, "value the metric should reach")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run and store every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export residuals and final fields to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tFLOW\tLENGTH SCALE\tDDT\tCELLS")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", name, c.Case.Flow, lengthScaleLabel(c), c.Numerics.Ddt, c.Case.Cells)
			}
			return w.Flush()
		},
	}

	coeffsCmd := &cobra.Command{
		Use:   "coeffs [preset]",
		Short: "print the closure coefficients",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printCoeffs,
	}
	coeffsCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, sweepCmd, calibrateCmd, batchCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, presetsCmd, coeffsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func caseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "outer iterations")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step")
	cmd.Flags().StringVar(&solver, "solver", "PBiCGStab", "linear solver")
	cmd.Flags().StringVar(&ddt, "ddt", "Euler", "time scheme")
	cmd.Flags().StringVar(&lengthScale, "length-scale", "wallDistance", "length scale (wallDistance, hybrid)")
	cmd.Flags().StringVar(&policy, "policy", "min", "hybrid policy (min, delayed)")
	cmd.Flags().BoolVar(&ft2, "ft2", false, "enable the ft2 trip term")
	cmd.Flags().BoolVar(&helicity, "helicity", true, "enable the helicity correction")
}

func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	if logJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// loadConfig applies the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (string, *config.Config, error) {
	name := "channel"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return "", nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("iterations") {
		cfg.Numerics.Iterations = iterations
	}
	if flags.Changed("dt") {
		cfg.Numerics.Dt = dt
	}
	if flags.Changed("solver") {
		cfg.Numerics.Solver = solver
	}
	if flags.Changed("ddt") {
		cfg.Numerics.Ddt = ddt
	}
	if flags.Changed("length-scale") {
		cfg.LengthScale.Type = lengthScale
	}
	if flags.Changed("policy") {
		cfg.LengthScale.Policy = policy
	}
	if flags.Changed("ft2") {
		cfg.Model.Ft2 = ft2
	}
	if flags.Changed("helicity") {
		cfg.Model.Helicity = helicity
	}
	return name, cfg, cfg.Validate()
}

func lengthScaleLabel(c *config.Config) string {
	if c.LengthScale.Type == "hybrid" {
		return fmt.Sprintf("hybrid(%s)", c.LengthScale.Policy)
	}
	return c.LengthScale.Type
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func setup(cfg *config.Config) (*experiment.Experiment, error) {
	exp := experiment.New(cfg, logrus.StandardLogger())
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, err
	}
	return exp, nil
}

func runCase(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := setup(cfg)
	if err != nil {
		return err
	}

	if resume != "" {
		f, err := st.LoadField(resume, storage.NuTildaFile, exp.Mesh().Shape())
		if err != nil {
			return fmt.Errorf("resume %s: %w", resume, err)
		}
		if err := exp.Model().Restore(f, exp.Flow().NuField()); err != nil {
			return fmt.Errorf("resume %s: %w", resume, err)
		}
		logrus.WithField("run", resume).Info("restored nuTilda")
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s (%s, %s)...\n", name, cfg.Case.Flow, lengthScaleLabel(cfg))
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("iterations: %d (converged: %v)\n", result.StepsTaken, result.Converged)
	if rate, r2 := analysis.ConvergenceRate(result.Residuals); r2 > 0 {
		fmt.Printf("convergence: %.3f decades/iteration (R^2 %.2f)\n", rate, r2)
	}
	if period, strength := analysis.Oscillation(result.Residuals); !result.Converged && strength > 0.5 {
		fmt.Printf("residual oscillates with period %.1f iterations (%.0f%% of power)\n", period, 100*strength)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return runErr
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(w, "  %s\t%.6g\n", name, m[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// The monitor owns the terminal.
	logrus.SetLevel(logrus.ErrorLevel)

	exp, err := setup(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	return viz.Run(ctx, fmt.Sprintf("%s / %s", name, lengthScaleLabel(cfg)), exp.GetSimulator(), exp.SimConfig(), axis)
}

func compareLengthScales(cmd *cobra.Command, args []string) error {
	name, base, err := loadConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	labels := make([]string, 0, len(args)-1)
	runs := make([]*sim.Simulator, 0, len(args)-1)
	var simCfg sim.Config
	for _, spec := range args[1:] {
		cfg := *base
		cfg.LengthScale.Type, cfg.LengthScale.Policy, _ = strings.Cut(spec, ":")
		if cfg.LengthScale.Policy == "" {
			cfg.LengthScale.Policy = base.LengthScale.Policy
		}
		exp, err := setup(&cfg)
		if err != nil {
			return fmt.Errorf("%s: %w", spec, err)
		}
		labels = append(labels, lengthScaleLabel(&cfg))
		runs = append(runs, exp.GetSimulator())
		simCfg = exp.SimConfig()
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	results, err := sim.NewEnsemble(0, runs...).Run(ctx, simCfg)
	if err != nil {
		return err
	}

	fmt.Printf("comparing length scales for %s (%d iterations, %v)\n\n", name, simCfg.Iterations, time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LENGTH SCALE\tITERS\tRESIDUAL\tNUT/NU MAX\tNUTILDA MEAN\tFAILURES")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.4g\t%.4g\t%d\n",
			labels[i], r.StepsTaken, r.FinalResidual(),
			r.Metrics["nut_ratio_max"], r.Metrics["nuTilda_mean"], len(r.Errors))
	}
	return w.Flush()
}

func sweepCoeff(cmd *cobra.Command, args []string) error {
	name, base, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	probe := base.Model
	if err := probe.Set(sweepParam, sweepMin); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	run := func(ctx context.Context, v float64) (*sim.Result, error) {
		cfg := *base
		if err := cfg.Model.Set(sweepParam, v); err != nil {
			return nil, err
		}
		exp, err := setup(&cfg)
		if err != nil {
			return nil, err
		}
		return exp.GetSimulator().Run(ctx, exp.SimConfig())
	}
	peak := func(r *sim.Result) float64 { return r.Metrics["nut_ratio_max"] }

	points, err := analysis.Sweep(ctx, sweepMin, sweepMax, sweepSteps, run, peak)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s on %s\n\n", sweepParam, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tNUT/NU MAX\tITERS\n", strings.ToUpper(sweepParam))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Failed {
			fmt.Fprintf(w, "%.4g\tfailed\t-\n", p.Param)
			continue
		}
		values = append(values, p.Value)
		fmt.Fprintf(w, "%.4g\t%.4g\t%d\n", p.Param, p.Value, p.Steps)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(values) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(values, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("nut/nu max vs "+sweepParam)))
	}
	return nil
}

func calibrate(cmd *cobra.Command, args []string) error {
	name, base, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	names, values, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, values)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	obj := func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := *base
		for k, v := range params {
			if err := cfg.Model.Set(k, v); err != nil {
				return 0, err
			}
		}
		exp, err := setup(&cfg)
		if err != nil {
			return 0, err
		}
		res, err := exp.GetSimulator().Run(ctx, exp.SimConfig())
		if err != nil {
			return 0, err
		}
		got, ok := res.Metrics[calMetric]
		if !ok {
			return 0, fmt.Errorf("metric %q not recorded", calMetric)
		}
		return optim.Target(got, calTarget), nil
	}

	fmt.Printf("calibrating %s on %s: %s -> %g (%d combinations)\n\n", strings.Join(names, ","), name, calMetric, calTarget, grid.Size())
	best, points, err := grid.Search(ctx, obj)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tERROR\n", strings.Join(names, "\t"))
	for _, p := range points {
		for _, n := range names {
			fmt.Fprintf(w, "%.4g\t", p.Params[n])
		}
		if p.Err != nil {
			fmt.Fprintf(w, "failed: %v\n", p.Err)
			continue
		}
		fmt.Fprintf(w, "%.4g\n", p.Cost)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Println("\nbest:")
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, best.Params[n])
	}
	fmt.Printf("  |%s - %g| = %.4g\n", calMetric, calTarget, best.Cost)
	return nil
}

// parseGrid reads name=v1,v2,... specs.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid is required")
	}
	names := make([]string, 0, len(specs))
	values := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("grid %q: want name=v1,v2,...", spec)
		}
		var vals []float64
		for _, item := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		values = append(values, vals)
	}
	return names, values, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	outcomes, runErr := automation.RunScenario(ctx, sc, storage.New(dataDir), logrus.StandardLogger())

	fmt.Printf("scenario %s: %d/%d steps in %v\n\n", sc.Name, len(outcomes), len(sc.Steps), time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tRUN ID\tITERS\tRESIDUAL\tNUT/NU MAX\tCONVERGED")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\t%.4g\t%v\n",
			o.Name, o.RunID, o.Result.StepsTaken, o.Result.FinalResidual(),
			o.Result.Metrics["nut_ratio_max"], o.Result.Converged)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
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
	fmt.Fprintln(w, "ID\tCASE\tTIME\tFLOW\tLENGTH SCALE\tITERS\tRESIDUAL\tCONVERGED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.3e\t%v\n",
			run.ID,
			run.Case,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Flow,
			run.LengthScale,
			run.Iterations,
			run.FinalResidual,
			run.Converged,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	res, err := st.LoadResiduals(runID)
	if err != nil {
		return err
	}
	if len(res.Initial) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("case: %s (%s, %s)\n", meta.Case, meta.Flow, meta.LengthScale)
	fmt.Printf("iterations: %d\n\n", len(res.Initial))

	logRes := make([]float64, 0, len(res.Initial))
	for _, r := range res.Initial {
		if r > 0 {
			logRes = append(logRes, math.Log10(r))
		}
	}
	if len(logRes) > 0 {
		fmt.Println(asciigraph.Plot(logRes,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("log10 initial residual"),
		))
		fmt.Println()
	}
	if svgDir != "" {
		if err := os.MkdirAll(svgDir, 0o755); err != nil {
			return err
		}
	}
	if svgDir != "" && len(logRes) > 0 {
		if err := writeSVG(filepath.Join(svgDir, "residuals.svg"), export.ResidualPlot(meta.ID, res.Initial)); err != nil {
			return err
		}
	}

	if meta.Config == nil {
		return nil
	}
	exp := experiment.New(meta.Config, logrus.StandardLogger())
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}
	for _, name := range []string{storage.NuTildaFile, storage.NutFile} {
		f, err := st.LoadField(runID, name, exp.Mesh().Shape())
		if err != nil {
			return err
		}
		points := analysis.Profile(exp.Mesh(), f, axis)
		if len(points) < 2 {
			continue
		}
		profile := analysis.Values(points)
		fmt.Println(asciigraph.Plot(profile,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s along axis %d", f.Name, axis)),
		))
		fmt.Println()

		if svgDir == "" {
			continue
		}
		pos := make([]float64, len(points))
		for i, p := range points {
			pos[i] = p.X
		}
		plot := export.ProfilePlot(meta.ID, f.Name, pos, profile)
		if err := writeSVG(filepath.Join(svgDir, f.Name+"_profile.svg"), plot); err != nil {
			return err
		}
	}
	if svgDir != "" {
		fmt.Printf("svg written to %s\n", svgDir)
	}
	return nil
}

func writeSVG(path string, p export.Plot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteSVG(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadResiduals(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		Residuals:  res.Initial,
		Times:      res.Times,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Iterations,
		Converged:  meta.Converged,
	}
	if meta.Config != nil {
		exp := experiment.New(meta.Config, logrus.StandardLogger())
		if err := exp.Setup(experiment.NewRegistry()); err != nil {
			return err
		}
		shape := exp.Mesh().Shape()
		if result.NuTilda, err = st.LoadField(runID, storage.NuTildaFile, shape); err != nil {
			return err
		}
		if result.Nut, err = st.LoadField(runID, storage.NutFile, shape); err != nil {
			return err
		}
	}

	d := storage.Describe{Case: meta.Case, Flow: meta.Flow, LengthScale: meta.LengthScale, Dt: meta.Dt}
	return storage.WriteJSON(os.Stdout, d, result)
}

func printCoeffs(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		if cfg = config.GetPreset(args[0]); cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	fields := cfg.Model.Fields()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(fields) {
		fmt.Fprintf(w, "%s\t%v\n", name, fields[name])
	}
	fmt.Fprintf(w, "nutMin\t%v\n", cfg.Model.NutMin)
	fmt.Fprintf(w, "nutMax\t%v\n", cfg.Model.NutMax)
	return w.Flush()
}
