package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/pendulum"
	"github.com/san-kum/dpsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Samples: []pendulum.Snapshot{
			{Time: 0, Theta1: 0.2617993877991494, Theta2: 0.7853981633974483, X1: 25.881904510252074, Y1: 83.40741737109317, Energy: -5906.2},
			{Time: 0.01, Theta1: 0.2618005246112953, Omega2: -0.0009659258262890683, Alpha1: 0.00757868667373122, Energy: -5906.2},
		},
		Metrics:     map[string]float64{"mean_energy": -5906.2},
		EnergyDrift: 1e-9,
		StepsTaken:  1,
		NonFinite:   -1,
	}
}

func fixedClock(st *Store, start time.Time) {
	now := start
	st.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	cfg := config.DefaultConfig()
	result := testResult()

	runID, err := st.Save(cfg, "classic", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "pendulum_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "classic" {
		t.Errorf("expected preset 'classic', got '%s'", meta.Preset)
	}
	if meta.Pendulum != cfg.Pendulum {
		t.Errorf("pendulum config mismatch: %+v", meta.Pendulum)
	}
	if meta.Metrics["mean_energy"] != -5906.2 {
		t.Errorf("expected mean energy -5906.2, got %f", meta.Metrics["mean_energy"])
	}
	if meta.Drift == nil || *meta.Drift != 1e-9 {
		t.Errorf("expected drift 1e-9, got %v", meta.Drift)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if diff := cmp.Diff(result.Samples, samples); diff != "" {
		t.Errorf("samples changed in round trip (-want +got):\n%s", diff)
	}
}

func TestStoreNonFinite(t *testing.T) {
	st := New(t.TempDir())
	result := testResult()
	result.Samples[1].Theta1 = math.NaN()
	result.Samples[1].Energy = math.Inf(-1)
	result.Metrics["energy_drift"] = math.NaN()
	result.EnergyDrift = math.NaN()
	result.NonFinite = 1

	runID, err := st.Save(config.DefaultConfig(), "", result)
	if err != nil {
		t.Fatalf("save should tolerate non-finite values: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := meta.Metrics["energy_drift"]; ok {
		t.Error("non-finite metric should be dropped")
	}
	if meta.Drift != nil || meta.NonFinite != 1 {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(samples[1].Theta1) || !math.IsInf(samples[1].Energy, -1) {
		t.Errorf("non-finite values should survive CSV: %+v", samples[1])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	fixedClock(st, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.Save(config.DefaultConfig(), "", testResult())
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	// stray entries are ignored
	if err := os.WriteFile(filepath.Join(st.Dir(), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(st.Dir(), "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, run := range runs {
		if run.ID != ids[i] {
			t.Errorf("run %d: expected %s, got %s", i, ids[i], run.ID)
		}
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreIDCollision(t *testing.T) {
	st := New(t.TempDir())
	ts := time.Unix(0, 42)
	st.now = func() time.Time { return ts }

	a, err := st.Save(config.DefaultConfig(), "", testResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(config.DefaultConfig(), "", testResult())
	if err != nil {
		t.Fatal(err)
	}
	if a != "pendulum_42" || b != "pendulum_43" {
		t.Errorf("unexpected ids %s, %s", a, b)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("pendulum_1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadSamples("pendulum_1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadSamples: expected ErrRunNotFound, got %v", err)
	}
	if err := st.ExportCSV(&bytes.Buffer{}, "pendulum_1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("ExportCSV: expected ErrRunNotFound, got %v", err)
	}
}

func TestLoadSamplesByHeader(t *testing.T) {
	st := New(t.TempDir())
	dir := filepath.Join(st.Dir(), "pendulum_7")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	csv := "energy,time,theta1\n-1.5,0.25,3\n"
	if err := os.WriteFile(filepath.Join(dir, "states.csv"), []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	samples, err := st.LoadSamples("pendulum_7")
	if err != nil {
		t.Fatal(err)
	}
	want := []pendulum.Snapshot{{Time: 0.25, Theta1: 3, Energy: -1.5}}
	if diff := cmp.Diff(want, samples); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if err := os.WriteFile(filepath.Join(dir, "states.csv"), []byte("time\nabc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadSamples("pendulum_7"); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), "", testResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportCSV(&buf, runID); err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != strings.Join(Columns, ",") {
		t.Errorf("unexpected header %q", header)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), "gentle", testResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Run.ID != runID || got.Run.Preset != "gentle" {
		t.Errorf("unexpected run: %+v", got.Run)
	}
	if len(got.Samples) != 2 || got.TruncatedAt != nil {
		t.Errorf("expected 2 untruncated samples, got %d", len(got.Samples))
	}
}

func TestExportJSONTruncatesNonFinite(t *testing.T) {
	samples := testResult().Samples
	samples[1].Omega1 = math.Inf(1)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, &RunMetadata{ID: "x"}, samples); err != nil {
		t.Fatalf("export should not fail on non-finite samples: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Samples) != 1 || got.TruncatedAt == nil || *got.TruncatedAt != 1 {
		t.Errorf("expected truncation at 1, got %d samples, %v", len(got.Samples), got.TruncatedAt)
	}
}

func TestExportJSONSingularRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pendulum.Theta1, cfg.Pendulum.Theta2 = 0.3*180/math.Pi, 0.3*180/math.Pi
	cfg.Pendulum.Length1, cfg.Pendulum.Length2 = 1, 1
	cfg.Pendulum.Mass1, cfg.Pendulum.Mass2 = 1, 1e20
	cfg.Dt, cfg.Duration, cfg.TimeScale = 0.01, 0.05, 1

	p, err := cfg.NewPendulum()
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(p.Alpha1()) {
		t.Fatalf("expected NaN alpha1 at t=0, got %g", p.Alpha1())
	}
	result, err := sim.New().Run(context.Background(), p, sim.FromConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}

	st := New(t.TempDir())
	runID, err := st.Save(cfg, "", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.TruncatedAt == nil || *got.TruncatedAt != 0 || len(got.Samples) != 0 {
		t.Errorf("expected truncation at 0, got %d samples, %v", len(got.Samples), got.TruncatedAt)
	}
	if got.Run.NonFinite != 0 {
		t.Errorf("expected non_finite 0, got %d", got.Run.NonFinite)
	}
}
