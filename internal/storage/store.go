package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/logging"
	"github.com/san-kum/dpsim/internal/pendulum"
	"github.com/san-kum/dpsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	runPrefix    = "pendulum"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Columns is the header of states.csv.
var Columns = []string{
	"time", "theta1", "theta2", "omega1", "omega2",
	"alpha1", "alpha2", "x1", "y1", "x2", "y2", "energy",
}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string                `json:"id"`
	Timestamp time.Time             `json:"timestamp"`
	Preset    string                `json:"preset,omitempty"`
	Pendulum  config.PendulumConfig `json:"pendulum"`
	Frame     string                `json:"frame"`
	Dt        float64               `json:"dt"`
	Duration  float64               `json:"duration"`
	TimeScale float64               `json:"time_scale"`
	Steps     int                   `json:"steps"`
	Samples   int                   `json:"samples"`
	NonFinite int                   `json:"non_finite"`
	Drift     *float64              `json:"energy_drift,omitempty"`
	Metrics   map[string]float64    `json:"metrics"`
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run ID. Non-finite metrics are left out of the metadata.
func (s *Store) Save(cfg *config.Config, preset string, result *sim.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	ts := s.now()
	runID, runDir, err := s.createRunDir(ts)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: ts,
		Preset:    preset,
		Pendulum:  cfg.Pendulum,
		Frame:     cfg.Frame,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		TimeScale: cfg.TimeScale,
		Steps:     result.StepsTaken,
		Samples:   len(result.Samples),
		NonFinite: result.NonFinite,
		Metrics:   finiteMetrics(runID, result.Metrics),
	}
	if isFinite(result.EnergyDrift) {
		drift := result.EnergyDrift
		meta.Drift = &drift
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, statesFile), result.Samples); err != nil {
		return "", err
	}

	logging.Logger().Debug("run saved", "id", runID, "samples", len(result.Samples))
	return runID, nil
}

// createRunDir claims pendulum_<unixnano>, bumping the suffix on collision.
func (s *Store) createRunDir(ts time.Time) (string, string, error) {
	n := ts.UnixNano()
	for {
		runID := fmt.Sprintf("%s_%d", runPrefix, n)
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
		n++
	}
}

func finiteMetrics(runID string, metrics map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for name, v := range metrics {
		if !isFinite(v) {
			logging.Logger().Warn("dropping non-finite metric", "id", runID, "metric", name, "value", v)
			continue
		}
		out[name] = v
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSamples(path string, samples []pendulum.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}

	row := make([]string, len(Columns))
	for _, sample := range samples {
		for i, v := range sampleValues(sample) {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func sampleValues(s pendulum.Snapshot) []float64 {
	return []float64{
		s.Time, s.Theta1, s.Theta2, s.Omega1, s.Omega2,
		s.Alpha1, s.Alpha2, s.X1, s.Y1, s.X2, s.Y2, s.Energy,
	}
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			logging.Logger().Debug("skipping run directory", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s metadata: %w", runID, err)
	}

	return &meta, nil
}

// StatesPath is the location of a run's states.csv.
func (s *Store) StatesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, statesFile)
}

// LoadSamples reads states.csv back into snapshots. Columns are matched by
// header name; missing columns read as zero.
func (s *Store) LoadSamples(runID string) ([]pendulum.Snapshot, error) {
	file, err := os.Open(s.StatesPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: read %s samples: %w", runID, err)
	}
	if len(records) < 2 {
		return []pendulum.Snapshot{}, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}

	samples := make([]pendulum.Snapshot, 0, len(records)-1)
	for line, record := range records[1:] {
		get := func(name string) (float64, error) {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return 0, nil
			}
			return strconv.ParseFloat(record[i], 64)
		}

		var vals [12]float64
		for i, name := range Columns {
			v, err := get(name)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d column %s: %w", runID, line+2, name, err)
			}
			vals[i] = v
		}

		samples = append(samples, pendulum.Snapshot{
			Time: vals[0], Theta1: vals[1], Theta2: vals[2], Omega1: vals[3], Omega2: vals[4],
			Alpha1: vals[5], Alpha2: vals[6], X1: vals[7], Y1: vals[8], X2: vals[9], Y2: vals[10],
			Energy: vals[11],
		})
	}

	return samples, nil
}
