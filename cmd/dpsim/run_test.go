package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/pendulum"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	t.Cleanup(func() { preset, configFile = "", "" })

	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newTestCommand(t))
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *config.DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestResolveConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := "pendulum:\n  theta1: 120\n  mass1: 2\ndt: 0.002\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand(t)
	preset = "chaos"
	configFile = path
	if err := cmd.Flags().Set("m1", "7"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("frame", "pivot"); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}

	// the config file replaces the preset, flags override the file
	if cfg.Pendulum.Theta1 != 120 || cfg.Dt != 0.002 {
		t.Errorf("config file not applied: %+v", cfg)
	}
	if cfg.Pendulum.Mass1 != 7 {
		t.Errorf("flag should override file, got mass1=%g", cfg.Pendulum.Mass1)
	}
	if cfg.Pendulum.Theta2 != config.DefaultTheta2 {
		t.Errorf("unset flag should not override, got theta2=%g", cfg.Pendulum.Theta2)
	}

	p, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	if p.Frame != pendulum.FramePivot {
		t.Errorf("expected pivot frame, got %v", p.Frame)
	}
}

func TestResolveConfigPreset(t *testing.T) {
	cmd := newTestCommand(t)
	preset = "heavy-lower"

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pendulum.Mass2 != 50 {
		t.Errorf("expected preset mass2 50, got %g", cfg.Pendulum.Mass2)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	cmd := newTestCommand(t)
	preset = "nope"
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected error for unknown preset")
	}

	cmd = newTestCommand(t)
	if err := cmd.Flags().Set("l1", "0"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected validation error for zero length")
	}
}

func TestSeries(t *testing.T) {
	samples := []pendulum.Snapshot{{Theta2: 1, Energy: -3}, {Theta2: 2, Energy: -4}}

	got, err := series(samples, "energy")
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != -3 || got[1] != -4 {
		t.Errorf("unexpected series %v", got)
	}

	if _, err := series(samples, "speed"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestCLILogger(t *testing.T) {
	tests := []struct {
		verbose   bool
		wantDebug bool
	}{
		{false, false},
		{true, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		log := cliLogger(&buf, tt.verbose)
		log.Debug("run started")
		log.Warn("non-finite state", "step", 3)

		out := buf.String()
		if !strings.Contains(out, "non-finite state") {
			t.Errorf("verbose=%v: warning missing from %q", tt.verbose, out)
		}
		if got := strings.Contains(out, "run started"); got != tt.wantDebug {
			t.Errorf("verbose=%v: debug output = %v, want %v", tt.verbose, got, tt.wantDebug)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	samples := []pendulum.Snapshot{
		{Theta1: 0, Omega1: -1},
		{Theta1: 1, Omega1: 0},
		{Theta1: 2, Omega1: 1},
	}

	plot, err := phasePortrait(samples, "theta1, omega1", 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(plot, "\n"); got != 10 {
		t.Errorf("expected 10 rows, got %d", got)
	}
	if strings.Count(plot, "•") != 3 {
		t.Errorf("expected 3 plotted points in %q", plot)
	}

	for _, axes := range []string{"theta1", "theta1,speed", "a,b,c"} {
		if _, err := phasePortrait(samples, axes, 20, 10); err == nil {
			t.Errorf("expected error for axes %q", axes)
		}
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	cmd := newTestCommand(t)
	if err := cmd.Flags().Set("theta2", "90"); err != nil {
		t.Fatal(err)
	}
	if err := saveConfig(cmd, []string{path}); err != nil {
		t.Fatal(err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := config.DefaultConfig()
	want.Pendulum.Theta2 = 90
	if *loaded != *want {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, want)
	}
}
