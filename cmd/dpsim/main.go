package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/logging"
)

var (
	dataDir string
	verbose bool

	// Run settings
	dt          float64
	duration    float64
	timeScale   float64
	sampleEvery int
	frame       string

	// Initial state, angles in degrees
	theta1 float64
	theta2 float64
	omega1 float64
	omega2 float64

	// Physical parameters
	length1 float64
	length2 float64
	mass1   float64
	mass2   float64
	gravity float64

	configFile string
	preset     string

	// Analysis
	field     string
	index     int
	lyapDt    float64
	lyapTime  float64
	lyapEps   float64
	sweepName string
	sweepMin  float64
	sweepMax  float64
	sweepN    int
	trials    int
	perturb   float64
	seed      int64
	workers   int
	count     int
	spread    float64
	noSave    bool
	svgSize   int
	outFile   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dpsim",
		Short: "double pendulum simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLogger(cliLogger(os.Stderr, verbose))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dpsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a pendulum and store the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without storing the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "theta1,theta2,energy", "comma separated columns to plot")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "scatter plot of one stored column against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	phaseCmd.Flags().StringVar(&field, "field", "theta1,omega1", "x,y columns")

	drawCmd := &cobra.Command{
		Use:   "draw [run_id]",
		Short: "draw the pendulum at one stored sample",
		Args:  cobra.ExactArgs(1),
		RunE:  drawRun,
	}
	drawCmd.Flags().IntVar(&index, "index", -1, "sample index, negative counts from the end")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write run samples as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write run metadata and samples as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the lower bob trace as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image width and height in pixels")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file, stdout when empty")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum and statistics of a stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&field, "field", "theta1", "column to analyze")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE:  runLyapunov,
	}
	addConfigFlags(lyapunovCmd)
	lyapDefaults := analysis.DefaultLyapunovConfig()
	lyapunovCmd.Flags().Float64Var(&lyapDt, "lyap-dt", lyapDefaults.Dt, "integration step")
	lyapunovCmd.Flags().Float64Var(&lyapTime, "lyap-time", lyapDefaults.Duration, "integration time")
	lyapunovCmd.Flags().Float64Var(&lyapEps, "eps", lyapDefaults.Perturbation, "initial separation")

	poincareCmd := &cobra.Command{
		Use:   "poincare",
		Short: "plot the Poincaré section θ1 = 0, ω1 > 0",
		Args:  cobra.NoArgs,
		RunE:  runPoincare,
	}
	addConfigFlags(poincareCmd)

	saveConfigCmd := &cobra.Command{
		Use:   "save-config [file]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  saveConfig,
	}
	addConfigFlags(saveConfigCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one physical parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepName, "param", "gravity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 20, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "steps", 4, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run perturbed trials and report divergence",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 32, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.5, "max angle perturbation in degrees")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 for time based")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent trials, 0 for GOMAXPROCS")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run pendulums with fanned-out initial angles in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&count, "count", 8, "number of pendulums")
	ensembleCmd.Flags().Float64Var(&spread, "spread", 0.01, "θ1 offset between neighbours in degrees")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, drawCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		analyzeCmd, lyapunovCmd, poincareCmd, saveConfigCmd, presetsCmd, sweepCmd, monteCarloCmd, scenarioCmd,
		ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", 0.01, "timestep per tick")
	f.Float64Var(&duration, "time", 10.0, "run length, simulated time is time x timescale")
	f.Float64Var(&timeScale, "timescale", 8.0, "simulated time per unit of dt")
	f.IntVar(&sampleEvery, "sample", 1, "record every n-th tick")
	f.StringVar(&frame, "frame", "display", "coordinate frame: display or pivot")
	f.Float64Var(&theta1, "theta1", 15, "initial upper angle (degrees)")
	f.Float64Var(&theta2, "theta2", 45, "initial lower angle (degrees)")
	f.Float64Var(&omega1, "omega1", 0, "initial upper angular velocity")
	f.Float64Var(&omega2, "omega2", 0, "initial lower angular velocity")
	f.Float64Var(&length1, "l1", 100, "upper rod length")
	f.Float64Var(&length2, "l2", 80, "lower rod length")
	f.Float64Var(&mass1, "m1", 5, "upper bob mass")
	f.Float64Var(&mass2, "m2", 5, "lower bob mass")
	f.Float64Var(&gravity, "gravity", 10, "gravitational constant")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

// cliLogger reports warnings by default and everything with --verbose.
func cliLogger(w io.Writer, verbose bool) *slog.Logger {
	if verbose {
		return logging.NewText(w, slog.LevelDebug)
	}
	return logging.NewText(w, slog.LevelWarn)
}
