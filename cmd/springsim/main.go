package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/automation"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/optim"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/storage"
	"github.com/san-kum/springsim/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	dt          float64
	duration    float64
	seed        int64
	recordEvery int
	integrator  string
	// body and axis select the coordinate for analyze and sweep
	body string
	axis string
	// phase portrait in analyze
	phase bool
	// export destinations
	outFile string
	// export-svg
	svgWidth   int
	svgHeight  int
	svgAt      float64
	svgBraille bool
	svgRun     string
	svgColor   string
	// sweep
	springIdx   int
	kMin        float64
	kMax        float64
	kSteps      int
	bifurcation bool
	transient   float64
	record      float64
	// montecarlo
	trials     int
	perturb    float64
	bound      float64
	divergence float64
	// tune
	tuneSprings []int
	targetFreq  float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f87"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "springsim",
		Short: "2D mass-spring simulation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			// no command: pick a scene and watch it
			registry := experiment.NewRegistry()
			return viz.RunPicker(config.ListPresets(), registry.ListIntegrators(), resolver(registry))
		},
	}
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ./springsim.yaml)")
	rootCmd.PersistentFlags().String("data", ".springsim", "data directory")
	rootCmd.PersistentFlags().Int("workers", 0, "worker goroutines per world for scenes that set none")
	viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	sceneFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body positions of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&axis, "axis", "x", "coordinate to plot (x or y)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&body, "body", "", "body name (default first body)")
	analyzeCmd.Flags().StringVar(&axis, "axis", "x", "coordinate to analyze (x or y)")
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "also draw the phase portrait")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [scene]",
		Short: "render a scene, or a stored trajectory, to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	sceneFlags(exportSVGCmd)
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")
	exportSVGCmd.Flags().Float64Var(&svgAt, "at", 0, "simulate this many seconds before rendering")
	exportSVGCmd.Flags().BoolVar(&svgBraille, "braille", false, "render the terminal canvas instead of vectors")
	exportSVGCmd.Flags().StringVar(&svgRun, "run", "", "render the trajectory of --body from this run")
	exportSVGCmd.Flags().StringVar(&body, "body", "", "body for --run (default first body)")
	exportSVGCmd.Flags().StringVar(&svgColor, "color", "#00ffff", "trajectory stroke color")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in scenes",
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep one spring constant and measure the response",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&springIdx, "spring", 0, "index of the swept spring")
	sweepCmd.Flags().Float64Var(&kMin, "kmin", 0.5, "first spring constant")
	sweepCmd.Flags().Float64Var(&kMax, "kmax", 4, "last spring constant")
	sweepCmd.Flags().IntVar(&kSteps, "steps", 8, "number of spring constants")
	sweepCmd.Flags().StringVar(&body, "body", "", "watched body (default first mass)")
	sweepCmd.Flags().StringVar(&axis, "axis", "x", "watched coordinate (x or y)")
	sweepCmd.Flags().BoolVar(&bifurcation, "bifurcation", false, "draw a peak diagram instead of the table")
	sweepCmd.Flags().Float64Var(&transient, "transient", 5, "bifurcation: seconds discarded before recording")
	sweepCmd.Flags().Float64Var(&record, "record", 20, "bifurcation: seconds recorded")

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scene",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	sceneFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark stepping, sequential against parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "run a scene many times from jittered starting positions",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	sceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.05, "largest jitter per coordinate")
	monteCarloCmd.Flags().Float64Var(&bound, "bound", 10, "largest final displacement counted as stable")

	divergeCmd := &cobra.Command{
		Use:   "diverge [scene]",
		Short: "estimate how fast nearby trajectories separate",
		Args:  cobra.ExactArgs(1),
		RunE:  runDivergence,
	}
	sceneFlags(divergeCmd)
	divergeCmd.Flags().StringVar(&body, "body", "", "perturbed body (default first mass)")
	divergeCmd.Flags().Float64Var(&divergence, "perturb", 1e-6, "initial velocity perturbation")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid-search spring constants for a target frequency",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	sceneFlags(tuneCmd)
	tuneCmd.Flags().IntSliceVar(&tuneSprings, "springs", []int{0}, "indices of the tuned springs")
	tuneCmd.Flags().Float64Var(&kMin, "kmin", 0.5, "smallest spring constant")
	tuneCmd.Flags().Float64Var(&kMax, "kmax", 4, "largest spring constant")
	tuneCmd.Flags().IntVar(&kSteps, "steps", 8, "candidate constants per spring")
	tuneCmd.Flags().StringVar(&body, "body", "", "watched body (default first mass)")
	tuneCmd.Flags().StringVar(&axis, "axis", "x", "watched coordinate (x or y)")
	tuneCmd.Flags().Float64Var(&targetFreq, "freq", 0.25, "target frequency in hz")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		liveCmd, presetsCmd, sweepCmd, compareCmd, benchCmd, scenarioCmd, monteCarloCmd, divergeCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads an optional settings file and SPRINGSIM_* variables.
func initConfig() {
	viper.SetEnvPrefix("springsim")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("springsim")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, dimStyle.Render("using settings: "+viper.ConfigFileUsed()))
	}
}

func dataDir() string { return viper.GetString("data") }

// sceneFlags adds the run parameters a scene file can be overridden with.
func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "record a frame every n ticks")
	cmd.Flags().StringVar(&integrator, "integrator", experiment.DefaultIntegrator, "integrator")
}

// loadScene resolves a preset or scene file and applies the flags the user
// set explicitly.
func loadScene(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg, err := experiment.NewRegistry().GetScene(name)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if cfg.Workers == 0 {
		cfg.Workers = viper.GetInt("workers")
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return cfg, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, Seed: cfg.Seed, RecordEvery: cfg.RecordEvery}
}

func resolver(registry *experiment.Registry) viz.Resolver {
	return func(scene, integ string) (*config.Config, physics.Integrator, error) {
		cfg, err := registry.GetScene(scene)
		if err != nil {
			return nil, nil, err
		}
		i, err := registry.GetIntegrator(integ)
		if err != nil {
			return nil, nil, err
		}
		return cfg, i, nil
	}
}

func axisIndex(name string) (int, error) {
	switch strings.ToLower(name) {
	case "x", "0":
		return 0, nil
	case "y", "1":
		return 1, nil
	}
	return 0, fmt.Errorf("unknown axis %q (want x or y)", name)
}

// firstMass names the first movable body of a scene.
func firstMass(cfg *config.Config) (string, error) {
	if len(cfg.Masses) == 0 {
		return "", fmt.Errorf("scene %q has no masses", cfg.Name)
	}
	return cfg.Masses[0].Name, nil
}

// kickedWorld builds a scene and fires all of its kicks up front, for
// analyses that step a world themselves.
func kickedWorld(cfg *config.Config, integ func() (physics.Integrator, error)) (*sim.World, error) {
	w, simCfg, err := experiment.Build(cfg)
	if err != nil {
		return nil, err
	}
	i, err := integ()
	if err != nil {
		return nil, err
	}
	w.SetIntegrator(i)
	for _, k := range simCfg.Kicks {
		if err := w.Kick(k.Body, k.Velocity); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir())
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	integ, err := registry.GetIntegrator(integrator)
	if err != nil {
		return err
	}

	exp := experiment.New(scene)
	if err := exp.Setup(integ, registry.DefaultMetrics()); err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("running %s (%s)...", scene.Name, integrator)))
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(scene.Name, simConfig(scene), integrator, scene.Names(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", okStyle.Render(runID))
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	for _, e := range result.Errors {
		fmt.Println(warnStyle.Render(e.Error()))
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tINTEG\tBODIES\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%.2e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			len(run.Bodies),
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	ax, err := axisIndex(axis)
	if err != nil {
		return err
	}

	st := storage.New(dataDir())
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(result.Frames))

	const maxPlots = 6
	plotted := 0
	for i, name := range meta.Bodies {
		if plotted == maxPlots {
			break
		}
		data := result.Series(physics.BodyID(i), ax)
		if analysis.Summary(data).StdDev == 0 {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %s", name, axis)),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}

	if meta.Springs > 0 {
		stretch := make([]float64, len(result.Frames))
		for i, f := range result.Frames {
			for _, r := range f.Stretch {
				stretch[i] = math.Max(stretch[i], math.Abs(r-1))
			}
		}
		fmt.Println(asciigraph.Plot(stretch,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("max |stretch - 1|"),
		))
	}

	if plotted == 0 {
		fmt.Println(dimStyle.Render("no body moved"))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	ax, err := axisIndex(axis)
	if err != nil {
		return err
	}

	st := storage.New(dataDir())
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(meta.Bodies) == 0 || len(result.Frames) < 2 {
		return fmt.Errorf("no data")
	}

	name := body
	if name == "" {
		name = meta.Bodies[0]
	}
	idx, ok := meta.BodyIndex(name)
	if !ok {
		return fmt.Errorf("unknown body %q (run has %v)", name, meta.Bodies)
	}

	series := result.Series(physics.BodyID(idx), ax)
	detrended := analysis.Detrend(series)
	sampleDt := meta.SampleDt()

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, body: %s, axis: %s\n\n", meta.Scene, name, axis)
	fmt.Println(analysis.Summary(series))
	fmt.Println()

	if ps := analysis.PowerSpectrum(detrended); len(ps) >= 2 {
		fmt.Println(asciigraph.Plot(ps[:max(len(ps)/4, 2)],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s %s)", name, axis)),
		))
		fmt.Println()
	}

	freq := analysis.DominantFrequency(detrended, sampleDt)
	fmt.Printf("dominant frequency: %.4f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	if phase {
		vel := analysis.Velocity(series, sampleDt)
		fmt.Printf("\nphase portrait (%s against its velocity)\n", axis)
		fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(series, vel), 70, 20))
	}

	return nil
}

// output opens outFile, or stdout when none was given.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		return storage.ExportJSON(outFile, meta, result)
	}
	return storage.WriteJSON(os.Stdout, meta, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Frames) == 0 {
		return fmt.Errorf("no data to export")
	}

	if outFile != "" {
		return storage.ExportCSV(outFile, meta, result)
	}
	return storage.WriteFramesCSV(os.Stdout, meta.Bodies, result.Frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	var svg string
	switch {
	case svgRun != "":
		st := storage.New(dataDir())
		meta, result, err := st.LoadResult(svgRun)
		if err != nil {
			return err
		}
		name := body
		if name == "" && len(meta.Bodies) > 0 {
			name = meta.Bodies[0]
		}
		idx, ok := meta.BodyIndex(name)
		if !ok {
			return fmt.Errorf("unknown body %q (run has %v)", name, meta.Bodies)
		}
		svg = export.TrajectoryToSVG(result.Frames, physics.BodyID(idx), svgWidth, svgHeight, svgColor)
		if svg == "" {
			return fmt.Errorf("body %q has fewer than two recorded positions", name)
		}

	case len(args) == 1:
		scene, err := loadScene(cmd, args[0])
		if err != nil {
			return err
		}
		w, simCfg, err := experiment.Build(scene)
		if err != nil {
			return err
		}
		integ, err := experiment.NewRegistry().GetIntegrator(integrator)
		if err != nil {
			return err
		}
		w.SetIntegrator(integ)
		shapes, err := viz.AttachShapes(w, scene)
		if err != nil {
			return err
		}

		applied := make([]bool, len(simCfg.Kicks))
		for w.Time() < svgAt-1e-9 {
			if _, err := sim.ApplyKicks(w, simCfg.Kicks, applied); err != nil {
				return err
			}
			if err := w.Step(scene.Dt); err != nil {
				return err
			}
		}

		if svgBraille {
			// a braille cell is 2x4 pixels, drawn here at 4 units each
			c := viz.NewCanvas(max(svgWidth/8, 1), max(svgHeight/16, 1))
			viz.DrawWorld(c, viz.FitWorld(c, w, shapes), w, shapes)
			svg = export.CanvasToSVG(c, 4)
		} else {
			svg = export.SceneToSVG(w, shapes, svgWidth, svgHeight)
		}

	default:
		return fmt.Errorf("need a scene, or --run with a run id")
	}

	out, closeOut, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, svg); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Println(okStyle.Render("wrote " + outFile))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	integ, err := experiment.NewRegistry().GetIntegrator(integrator)
	if err != nil {
		return err
	}
	return viz.Run(scene, integ)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASSES\tANCHORS\tWALLS\tSPRINGS\tKICKS\tDT\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.3fs\t%.1fs\n",
			name, len(p.Masses), len(p.Anchors), len(p.Walls), len(p.Springs), len(p.Kicks), p.Dt, p.Duration)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	ax, err := axisIndex(axis)
	if err != nil {
		return err
	}
	name := body
	if name == "" {
		if name, err = firstMass(scene); err != nil {
			return err
		}
	}

	sweep := &automation.ParameterSweep{
		Scene:      scene,
		Integrator: integrator,
		Spring:     springIdx,
		KMin:       kMin,
		KMax:       kMax,
		NumSteps:   kSteps,
		Body:       name,
		Axis:       ax,
	}
	registry := experiment.NewRegistry()

	if bifurcation {
		points, err := automation.SweepBifurcation(sweep, registry, transient, record)
		if err != nil {
			return err
		}
		fmt.Printf("peaks of %s %s, spring %d, k %.3f..%.3f\n\n", name, axis, springIdx, kMin, kMax)
		fmt.Println(analysis.BifurcationToASCII(points, 70, 20))
		return nil
	}

	fmt.Printf("sweeping spring %d of %s, k %.3f..%.3f (%d runs)\n\n", springIdx, scene.Name, kMin, kMax, kSteps)
	start := time.Now()
	results, err := automation.RunSweep(context.Background(), sweep, registry)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "K\tFREQ\tPERIOD\tAMPLITUDE\tMAX_STRETCH\tDRIFT\tSTABLE")
	for _, r := range results {
		period := "-"
		if r.Frequency > 0 {
			period = fmt.Sprintf("%.3fs", 1/r.Frequency)
		}
		fmt.Fprintf(w, "%.4f\t%.4f hz\t%s\t%.4f\t%.4f\t%.2e\t%v\n",
			r.K, r.Frequency, period, r.Amplitude, r.MaxStretch, r.EnergyDrift, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("\n%d runs in %v", len(results), time.Since(start))))
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	integrators := args[1:]
	if len(integrators) == 0 {
		integrators = registry.ListIntegrators()
	}
	name, err := firstMass(scene)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", scene.Name, scene.Dt, scene.Duration)
	fmt.Printf("%-14s  %-12s  %-12s  %-12s  %-12s\n", "integrator", "final_"+name, "energy_drift", "max_stretch", "time_ms")
	fmt.Println(strings.Repeat("-", 70))

	for _, intName := range integrators {
		integ, err := registry.GetIntegrator(intName)
		if err != nil {
			fmt.Printf("%-14s  error: %v\n", intName, err)
			continue
		}

		exp := experiment.New(scene)
		stretch, _ := registry.GetMetric("max_stretch")
		if err := exp.Setup(integ, []sim.Metric{stretch}); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)

		if err != nil {
			fmt.Printf("%-14s  error: %v\n", intName, err)
			continue
		}

		finalX := 0.0
		if n := len(result.Frames); n > 0 {
			finalX = result.Frames[n-1].Positions[0].X
		}

		fmt.Printf("%-14s  %12.6f  %12.2e  %12.4f  %12.2f\n",
			intName, finalX, result.EnergyDrift, result.Metrics["max_stretch"], float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	workers := []int{1, runtime.NumCPU()}
	dts := []float64{0.001, 0.01}

	fmt.Printf("benchmarking %s (%d bodies, %d springs)\n\n", base.Name, len(base.Names()), len(base.Springs))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range workers {
		for _, step := range dts {
			scene := base.Clone()
			scene.Workers = n
			scene.Dt = step
			scene.Duration = 10
			// frames are not what is being measured
			scene.RecordEvery = int(scene.Duration / step)

			exp := experiment.New(scene)
			if err := exp.Setup(physics.NewSemiImplicitEuler(), nil); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%.4fs\t%d\t%v\t%.0f\n",
				n, step, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("scenario %s: %d steps", scenario.Name, len(scenario.Steps))))
	if scenario.Description != "" {
		fmt.Println(dimStyle.Render(scenario.Description))
	}
	fmt.Println()

	results, err := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry())
	if err != nil {
		return err
	}

	var st *storage.Store
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tINTEG\tSTEPS\tDRIFT\tERRORS\tSAVED")
	for i, r := range results {
		saved := "-"
		if r.Step.SaveAs != "" {
			if st == nil {
				st = storage.New(dataDir())
				if err := st.Init(); err != nil {
					return err
				}
			}
			id, err := st.Save(r.Step.SaveAs, simConfig(r.Scene), r.Integrator, r.Scene.Names(), r.Result)
			if err != nil {
				return err
			}
			saved = id
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2e\t%d\t%s\n",
			i+1, r.Step.Scene, r.Integrator, r.Result.StepsTaken, r.Result.EnergyDrift, len(r.Result.Errors), saved)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{
		Scene:        scene,
		Integrator:   integrator,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         scene.Seed,
		Bound:        bound,
	}

	fmt.Printf("monte carlo: %s, %d trials, jitter ±%.3f, seed %d\n\n", scene.Name, trials, perturb, scene.Seed)
	results, err := automation.RunMonteCarlo(context.Background(), mc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	disp := make([]float64, 0, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tMAX_DISPLACEMENT\tDRIFT\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%.2e\t%v\n", r.TrialID, r.MaxDisplacement, r.EnergyDrift, r.Stable)
		if !math.IsInf(r.MaxDisplacement, 0) {
			disp = append(disp, r.MaxDisplacement)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Println()
	fmt.Println(analysis.Summary(disp))
	status := okStyle
	if unstable > 0 {
		status = warnStyle
	}
	fmt.Println(status.Render(fmt.Sprintf("stable: %d, unstable: %d", stable, unstable)))
	return nil
}

func runDivergence(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	name := body
	if name == "" {
		if name, err = firstMass(scene); err != nil {
			return err
		}
	}

	registry := experiment.NewRegistry()
	build := func() (*sim.World, error) {
		return kickedWorld(scene, func() (physics.Integrator, error) { return registry.GetIntegrator(integrator) })
	}
	w, err := build()
	if err != nil {
		return err
	}
	b, err := w.Lookup(name)
	if err != nil {
		return err
	}

	rate, err := analysis.Divergence(build, b.ID(), divergence, scene.Dt, scene.Duration)
	if err != nil {
		return err
	}

	fmt.Printf("divergence of %s in %s over %.1fs: %.4f /s\n", name, scene.Name, scene.Duration, rate)
	if rate > 0.01 {
		fmt.Println(warnStyle.Render("nearby trajectories separate exponentially"))
	} else {
		fmt.Println(okStyle.Render("nearby trajectories stay close"))
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	ax, err := axisIndex(axis)
	if err != nil {
		return err
	}
	name := body
	if name == "" {
		if name, err = firstMass(scene); err != nil {
			return err
		}
	}
	idx := -1
	for i, n := range scene.Names() {
		if n == name {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown body %q", name)
	}

	ranges := make([][]float64, len(tuneSprings))
	for i := range ranges {
		ranges[i] = optim.Linspace(kMin, kMax, kSteps)
	}
	sampleDt := scene.Dt * float64(max(scene.RecordEvery, 1))
	objective := func(r *sim.Result) float64 {
		series := analysis.Detrend(r.Series(physics.BodyID(idx), ax))
		return math.Abs(analysis.DominantFrequency(series, sampleDt) - targetFreq)
	}

	fmt.Printf("tuning springs %v of %s for %.4f hz (%d runs)\n\n",
		tuneSprings, scene.Name, targetFreq, int(math.Pow(float64(max(kSteps, 1)), float64(len(tuneSprings)))))
	g := optim.NewGridSearch(tuneSprings, ranges)
	best, miss, err := g.Search(context.Background(), scene, integrator, experiment.NewRegistry(), objective)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPRING\tSTART\tEND\tK")
	for _, s := range tuneSprings {
		sp := scene.Springs[s]
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\n", s, sp.Start, sp.End, best[s])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("\nmissed the target by %.4f hz", miss)))
	return nil
}
