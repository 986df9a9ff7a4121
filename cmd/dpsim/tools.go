package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/automation"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/pendulum"
	"github.com/san-kum/dpsim/internal/sim"
	"github.com/san-kum/dpsim/internal/storage"
	"github.com/san-kum/dpsim/internal/viz"
)

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.NewPendulum()
	if err != nil {
		return err
	}

	lc := analysis.LyapunovConfig{Dt: lyapDt, Duration: lyapTime, Perturbation: lyapEps}
	lambda, err := analysis.LyapunovExponent(p, lc)
	if err != nil {
		return err
	}

	verdict := "regular"
	if lambda > 0.1 {
		verdict = "chaotic"
	}
	fmt.Println(viz.Report("lyapunov exponent", []viz.Row{
		viz.Rowf("θ1, θ2", "%.2f°, %.2f°", cfg.Pendulum.Theta1, cfg.Pendulum.Theta2),
		viz.Rowf("step", "%g", lc.Dt),
		viz.Rowf("time", "%g", lc.Duration),
		viz.Rowf("λ", "%.5f", lambda),
		{Label: "verdict", Value: verdict},
	}))
	return nil
}

func runPoincare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.NewPendulum()
	if err != nil {
		return err
	}

	points := analysis.PoincareSection(p, cfg.Step(), cfg.Duration*cfg.TimeScale)
	if len(points) == 0 {
		fmt.Println("no crossings detected")
		return nil
	}

	xy := make([]analysis.Point, len(points))
	for i, pt := range points {
		xy[i] = analysis.Point{X: pt.Theta2, Y: pt.Omega2}
	}
	fmt.Print(analysis.ScatterASCII(xy, 70, 25))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("%d crossings, x = θ2, y = ω2", len(points))))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepName,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tX2\tY2\tMIN E\tMAX E\tFLIPS\n", sweepName)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.3f\t%.3f\t%.4g\t%.4g\t%d\n",
			r.ParamValue, r.Final.X2, r.Final.Y2, r.MinEnergy, r.MaxEnergy, r.Flips)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
		Workers:      workers,
	})
	if err != nil {
		return err
	}

	stats := automation.MonteCarloStats(results)
	fmt.Println(viz.Report("monte carlo", []viz.Row{
		viz.Rowf("trials", "%d", stats.Trials),
		viz.Rowf("perturbation", "±%g°", perturb),
		viz.Rowf("non-finite", "%d", stats.NonFinite),
		viz.Rowf("mean divergence", "%.4g rad", stats.Divergence.Mean),
		viz.Rowf("std dev", "%.4g rad", stats.Divergence.StdDev),
		viz.Rowf("max divergence", "%.4g rad", stats.Divergence.Max),
	}))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, storage.New(dataDir))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSTEPS\tDRIFT\tFLIPS")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\t%g\n",
			r.Name, id, r.Result.StepsTaken, r.Result.EnergyDrift, r.Result.Metrics["flips"])
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}

	pendulums := make([]*pendulum.Pendulum, count)
	for i := range pendulums {
		c := cfg.Clone()
		c.Pendulum.Theta1 += float64(i) * spread
		p, err := c.NewPendulum()
		if err != nil {
			return err
		}
		pendulums[i] = p
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := sim.NewEnsemble(metrics.Defaults).Run(ctx, pendulums, sim.FromConfig(cfg))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tθ1₀\tθ1\tθ2\tX2\tY2\tFLIPS")
	for i, r := range results {
		final := r.Final()
		fmt.Fprintf(w, "%d\t%.3f°\t%.4f\t%.4f\t%.3f\t%.3f\t%g\n",
			i, cfg.Pendulum.Theta1+float64(i)*spread, final.Theta1, final.Theta2, final.X2, final.Y2, r.Metrics["flips"])
	}
	return w.Flush()
}
