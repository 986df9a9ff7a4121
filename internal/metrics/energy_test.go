package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dpsim/internal/pendulum"
)

func TestMeanEnergy(t *testing.T) {
	m := NewMeanEnergy()

	m.Observe(pendulum.Snapshot{Energy: -100})
	m.Observe(pendulum.Snapshot{Energy: -50})

	if got := m.Value(); got != -75 {
		t.Errorf("expected mean -75, got %g", got)
	}
}

func TestMeanEnergyReset(t *testing.T) {
	m := NewMeanEnergy()

	m.Observe(pendulum.Snapshot{Energy: 3})
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	for _, e := range []float64{-200, -190, -210, -205} {
		m.Observe(pendulum.Snapshot{Energy: e})
	}

	if got := m.Value(); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("expected max drift 0.05, got %g", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEnergyDriftZeroInitial(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(pendulum.Snapshot{Energy: 0})
	m.Observe(pendulum.Snapshot{Energy: 10})

	if m.Value() != 0 {
		t.Errorf("drift from zero energy is undefined, expected 0, got %g", m.Value())
	}
}

func TestEnergyDriftConservedRun(t *testing.T) {
	p, err := pendulum.New(0.2, 0.1, pendulum.NewParams(1, 1, 1, 1))
	if err != nil {
		t.Fatal(err)
	}

	m := NewEnergyDrift()
	m.Observe(p.Snapshot())
	for i := 0; i < 1000; i++ {
		p.Advance(0.0005)
		m.Observe(p.Snapshot())
	}

	if m.Value() > 0.01 {
		t.Errorf("small-step drift should stay below 1%%, got %g", m.Value())
	}
}
