package sim

import (
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/pendulum"
)

// Metric accumulates a scalar over every tick of a run.
type Metric interface {
	Name() string
	Observe(s pendulum.Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s pendulum.Snapshot)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(s pendulum.Snapshot)

func (f ObserverFunc) OnStep(s pendulum.Snapshot) { f(s) }

type Config struct {
	Dt          float64
	Duration    float64
	TimeScale   float64
	SampleEvery int
	// StopOnNonFinite ends the run at the first NaN or Inf state.
	StopOnNonFinite bool
}

// FromConfig extracts the run settings from a file configuration.
func FromConfig(c *config.Config) Config {
	return Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		TimeScale:   c.TimeScale,
		SampleEvery: c.SampleEvery,
	}
}

// Step is the simulated time passed to Advance on every tick.
func (c Config) Step() float64 {
	return c.Dt * c.TimeScale
}

// Ticks is the number of Advance calls a run makes.
func (c Config) Ticks() int {
	dt := c.Dt
	if dt < 0 {
		dt = -dt
	}
	return int(c.Duration/dt + 1e-9)
}

// maxPrealloc bounds the sample capacity reserved up front.
const maxPrealloc = 1 << 16

type Result struct {
	Samples     []pendulum.Snapshot
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	// NonFinite is the tick at which the state first became NaN or Inf, or -1.
	NonFinite int
}

// Final returns the last recorded sample.
func (r *Result) Final() pendulum.Snapshot {
	if len(r.Samples) == 0 {
		return pendulum.Snapshot{}
	}
	return r.Samples[len(r.Samples)-1]
}

// Series extracts one column from the samples.
func (r *Result) Series(pick func(pendulum.Snapshot) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = pick(s)
	}
	return out
}

func (r *Result) Times() []float64 {
	return r.Series(func(s pendulum.Snapshot) float64 { return s.Time })
}
