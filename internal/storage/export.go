package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/dpsim/internal/logging"
	"github.com/san-kum/dpsim/internal/pendulum"
)

type ExportData struct {
	Run     *RunMetadata        `json:"run"`
	Samples []pendulum.Snapshot `json:"samples"`
	// TruncatedAt is the index of the first non-finite sample, which JSON
	// cannot represent. Samples stop before it.
	TruncatedAt *int `json:"truncated_at,omitempty"`
}

// ExportJSON writes the run and its samples as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, samples []pendulum.Snapshot) error {
	data := ExportData{Run: meta, Samples: samples}
	for i, s := range samples {
		if !s.IsFinite() {
			idx := i
			data.Samples = samples[:i]
			data.TruncatedAt = &idx
			logging.Logger().Warn("truncating export at non-finite sample", "id", meta.ID, "index", i)
			break
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON loads runID and writes it to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, meta, samples)
}

// ExportCSV copies the stored states.csv of runID to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(s.StatesPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
