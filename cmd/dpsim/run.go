package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/sim"
	"github.com/san-kum/dpsim/internal/storage"
	"github.com/san-kum/dpsim/internal/viz"
)

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("timescale") {
		cfg.TimeScale = timeScale
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("frame") {
		cfg.Frame = frame
	}

	params := []struct {
		flag  string
		name  string
		value float64
	}{
		{"theta1", "theta1", theta1},
		{"theta2", "theta2", theta2},
		{"omega1", "omega1", omega1},
		{"omega2", "omega2", omega2},
		{"l1", "length1", length1},
		{"l2", "length2", length2},
		{"m1", "mass1", mass1},
		{"m2", "mass2", mass2},
		{"gravity", "gravity", gravity},
	}
	for _, p := range params {
		if flags.Changed(p.flag) {
			if err := cfg.SetParam(p.name, p.value); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func saveConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("config written to %s\n", args[0])
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	p, err := cfg.NewPendulum()
	if err != nil {
		return err
	}

	s := sim.New()
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Println(viz.Subtle.Render("running double pendulum simulation..."))
	start := time.Now()

	result, err := s.Run(ctx, p, sim.FromConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID := "(not saved)"
	if !noSave {
		st := storage.New(dataDir)
		runID, err = st.Save(cfg, preset, result)
		if err != nil {
			return err
		}
	}

	final := result.Final()
	rows := []viz.Row{
		{Label: "run id", Value: runID},
		viz.Rowf("elapsed", "%v", elapsed.Round(time.Microsecond)),
		viz.Rowf("steps", "%d", result.StepsTaken),
		viz.Rowf("samples", "%d", len(result.Samples)),
		viz.Rowf("sim time", "%.3f", final.Time),
		viz.Rowf("θ1, θ2", "%.4f, %.4f rad", final.Theta1, final.Theta2),
		viz.Rowf("bob 2", "(%.3f, %.3f)", final.X2, final.Y2),
		viz.Rowf("energy drift", "%.3e", result.EnergyDrift),
	}
	for _, name := range sortedKeys(result.Metrics) {
		rows = append(rows, viz.Rowf(name, "%.6g", result.Metrics[name]))
	}

	fmt.Println(viz.Report("run complete", rows))
	if result.NonFinite >= 0 {
		fmt.Println(viz.Warn.Render(fmt.Sprintf("state became non-finite at step %d", result.NonFinite)))
	}
	return nil
}
