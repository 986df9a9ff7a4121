package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/export"
	"github.com/san-kum/dpsim/internal/pendulum"
	"github.com/san-kum/dpsim/internal/storage"
	"github.com/san-kum/dpsim/internal/viz"
)

var columns = map[string]func(pendulum.Snapshot) float64{
	"time":   func(s pendulum.Snapshot) float64 { return s.Time },
	"theta1": func(s pendulum.Snapshot) float64 { return s.Theta1 },
	"theta2": func(s pendulum.Snapshot) float64 { return s.Theta2 },
	"omega1": func(s pendulum.Snapshot) float64 { return s.Omega1 },
	"omega2": func(s pendulum.Snapshot) float64 { return s.Omega2 },
	"alpha1": func(s pendulum.Snapshot) float64 { return s.Alpha1 },
	"alpha2": func(s pendulum.Snapshot) float64 { return s.Alpha2 },
	"x1":     func(s pendulum.Snapshot) float64 { return s.X1 },
	"y1":     func(s pendulum.Snapshot) float64 { return s.Y1 },
	"x2":     func(s pendulum.Snapshot) float64 { return s.X2 },
	"y2":     func(s pendulum.Snapshot) float64 { return s.Y2 },
	"energy": func(s pendulum.Snapshot) float64 { return s.Energy },
}

func column(name string) (func(pendulum.Snapshot) float64, error) {
	pick, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s (available: %s)", name, strings.Join(storage.Columns, ", "))
	}
	return pick, nil
}

func series(samples []pendulum.Snapshot, name string) ([]float64, error) {
	pick, err := column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = pick(s)
	}
	return out, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func loadRun(runID string) (*storage.RunMetadata, []pendulum.Snapshot, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tθ1\tθ2\tDURATION\tDT\tSTEPS")

	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f°\t%.1f°\t%.2f\t%.4f\t%d\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Pendulum.Theta1,
			run.Pendulum.Theta2,
			run.Duration,
			run.Dt,
			run.Steps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, name := range strings.Split(field, ",") {
		name = strings.TrimSpace(name)
		data, err := series(samples, name)
		if err != nil {
			return err
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs sample"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

// phasePortrait plots one stored column against another. axes is "x,y".
func phasePortrait(samples []pendulum.Snapshot, axes string, width, height int) (string, error) {
	names := strings.Split(axes, ",")
	if len(names) != 2 {
		return "", fmt.Errorf("phase needs two fields as x,y, got %q", axes)
	}
	x, err := column(strings.TrimSpace(names[0]))
	if err != nil {
		return "", err
	}
	y, err := column(strings.TrimSpace(names[1]))
	if err != nil {
		return "", err
	}
	return analysis.ScatterASCII(analysis.PhasePoints(samples, x, y), width, height), nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	plot, err := phasePortrait(samples, field, 70, 25)
	if err != nil {
		return err
	}
	if plot == "" {
		fmt.Println("no finite samples")
		return nil
	}
	fmt.Print(plot)
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("run %s, %d samples, %s", meta.ID, len(samples), field)))
	return nil
}

func drawRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	i := index
	if i < 0 {
		i += len(samples)
	}
	if i < 0 || i >= len(samples) {
		return fmt.Errorf("index %d out of range for %d samples", index, len(samples))
	}

	cfg := config.Config{Pendulum: meta.Pendulum, Frame: meta.Frame}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	s := samples[i]
	fmt.Print(viz.DrawPendulum(s, params, 60, 30).String())
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("t=%.3f  θ1=%.3f  θ2=%.3f", s.Time, s.Theta1, s.Theta2)))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	cfg := config.Config{Pendulum: meta.Pendulum, Frame: meta.Frame}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.TraceSVG(os.Stdout, samples, params, svgSize, "#00ff88")
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.TraceSVG(f, samples, params, svgSize, "#00ff88"); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("need at least 4 samples, got %d", len(samples))
	}

	data, err := series(samples, field)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s (%s)\n\n", meta.ID, field)

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:len(ps)/4+1]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+field+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	sampleDt := samples[1].Time - samples[0].Time
	freq := analysis.DominantFrequency(data, math.Abs(sampleDt))
	sum := analysis.Summarize(data)

	rows := []viz.Row{
		viz.Rowf("samples", "%d", sum.Count),
		viz.Rowf("mean", "%.6g", sum.Mean),
		viz.Rowf("std dev", "%.6g", sum.StdDev),
		viz.Rowf("range", "[%.6g, %.6g]", sum.Min, sum.Max),
		viz.Rowf("dominant freq", "%.4g", freq),
	}
	if freq > 0 {
		rows = append(rows, viz.Rowf("period", "%.4g", 1/freq))
	}
	if sum.Skipped > 0 {
		rows = append(rows, viz.Rowf("non-finite", "%d skipped", sum.Skipped))
	}
	fmt.Println(viz.Report("summary", rows))

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tθ1\tθ2\tL1/L2\tM1/M2\tDT\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		pc := p.Pendulum
		fmt.Fprintf(w, "%s\t%.0f°\t%.0f°\t%g/%g\t%g/%g\t%g\t%g\n",
			name, pc.Theta1, pc.Theta2, pc.Length1, pc.Length2, pc.Mass1, pc.Mass2, p.Dt, p.Duration)
	}
	return w.Flush()
}
