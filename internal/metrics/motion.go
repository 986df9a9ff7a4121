package metrics

import (
	"math"

	"github.com/san-kum/dpsim/internal/pendulum"
	"github.com/san-kum/dpsim/internal/sim"
)

// Flips counts passes of the lower rod over the top, i.e. θ2 crossing π.
// Consecutive angles further apart than π are treated as a wrap through 0
// and ignored.
type Flips struct {
	name  string
	prev  float64
	seen  bool
	count int
}

func NewFlips() *Flips {
	return &Flips{name: "flips"}
}

func (f *Flips) Name() string { return f.name }

func (f *Flips) Observe(s pendulum.Snapshot) {
	cur := s.Theta2
	if math.IsNaN(cur) {
		return
	}
	if f.seen && math.Abs(cur-f.prev) < math.Pi {
		if (f.prev < math.Pi && cur >= math.Pi) || (f.prev >= math.Pi && cur < math.Pi) {
			f.count++
		}
	}
	f.prev = cur
	f.seen = true
}

func (f *Flips) Value() float64 { return float64(f.count) }

func (f *Flips) Reset() {
	f.prev = 0
	f.seen = false
	f.count = 0
}

// Finite reports the fraction of observed states with no NaN or Inf field.
type Finite struct {
	name    string
	finite  int
	samples int
}

func NewFinite() *Finite {
	return &Finite{name: "finite"}
}

func (f *Finite) Name() string { return f.name }

func (f *Finite) Observe(s pendulum.Snapshot) {
	if s.IsFinite() {
		f.finite++
	}
	f.samples++
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1
	}
	return float64(f.finite) / float64(f.samples)
}

func (f *Finite) Reset() {
	f.finite = 0
	f.samples = 0
}

// Defaults is the metric set attached to every CLI run.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(),
		NewMeanEnergy(),
		NewFlips(),
		NewFinite(),
	}
}
