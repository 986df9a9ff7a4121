package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/logging"
	"github.com/san-kum/dpsim/internal/pendulum"
)

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances p for cfg.Ticks() ticks. The pendulum is mutated in place.
// A non-finite state is recorded in Result.NonFinite and, unless
// cfg.StopOnNonFinite is set, the run continues.
func (s *Simulator) Run(ctx context.Context, p *pendulum.Pendulum, cfg Config) (*Result, error) {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	steps := cfg.Ticks()
	step := cfg.Step()
	result := &Result{
		Samples:   make([]pendulum.Snapshot, 0, min(steps/cfg.SampleEvery+2, maxPrealloc)),
		Metrics:   make(map[string]float64),
		NonFinite: -1,
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := logging.Logger()
	log.Debug("run started", "ticks", steps, "step", step, "sample_every", cfg.SampleEvery)

	snap := p.Snapshot()
	initialEnergy := snap.Energy
	result.Samples = append(result.Samples, snap)
	s.observe(snap)
	if err := s.checkFinite(result, snap, 0, cfg); err != nil {
		return result, err
	}

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		p.Advance(step)
		result.StepsTaken++
		snap = p.Snapshot()
		s.observe(snap)

		sampled := i%cfg.SampleEvery == 0 || i == steps
		if sampled {
			result.Samples = append(result.Samples, snap)
		}

		if err := s.checkFinite(result, snap, i, cfg); err != nil {
			if !sampled {
				result.Samples = append(result.Samples, snap)
			}
			return result, err
		}
	}

	s.collect(result, initialEnergy, snap.Energy)
	log.Debug("run finished", "steps", result.StepsTaken, "energy_drift", result.EnergyDrift)
	return result, nil
}

// checkFinite records the first non-finite tick. With StopOnNonFinite it
// finalizes the result and returns the error that ends the run.
func (s *Simulator) checkFinite(result *Result, snap pendulum.Snapshot, tick int, cfg Config) error {
	if result.NonFinite >= 0 || snap.IsFinite() {
		return nil
	}
	result.NonFinite = tick
	logging.Logger().Warn("non-finite state", "step", tick, "time", snap.Time)
	if !cfg.StopOnNonFinite {
		return nil
	}
	s.collect(result, result.Samples[0].Energy, snap.Energy)
	return nonFiniteError(tick, snap)
}

func nonFiniteError(tick int, snap pendulum.Snapshot) error {
	return &SimError{Step: tick, Time: snap.Time, Message: "state is NaN or Inf", Wrapped: ErrNonFinite}
}

func (s *Simulator) observe(snap pendulum.Snapshot) {
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, obs := range s.observers {
		obs.OnStep(snap)
	}
}

func (s *Simulator) collect(result *Result, initialEnergy, finalEnergy float64) {
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// validateConfig fills zero TimeScale and SampleEvery with 1.
func validateConfig(cfg Config) (Config, error) {
	if cfg.Dt == 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return cfg, fmt.Errorf("%w: dt must be finite and non-zero, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 1) {
		return cfg, fmt.Errorf("%w: duration must be positive and finite, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if n := cfg.Duration / math.Abs(cfg.Dt); !(n <= config.MaxTicks) {
		return cfg, fmt.Errorf("%w: duration/dt gives %g ticks, limit is %d", ErrInvalidConfig, n, config.MaxTicks)
	}
	if cfg.TimeScale == 0 {
		cfg.TimeScale = 1
	}
	if !(cfg.TimeScale > 0) {
		return cfg, fmt.Errorf("%w: time scale must be positive, got %g", ErrInvalidConfig, cfg.TimeScale)
	}
	if cfg.SampleEvery == 0 {
		cfg.SampleEvery = 1
	}
	if cfg.SampleEvery < 0 {
		return cfg, fmt.Errorf("%w: sample interval must be positive, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return cfg, nil
}

// RunWithCallback streams snapshots to callback, starting with the initial
// state. Returning false from callback stops the run without error.
func (s *Simulator) RunWithCallback(ctx context.Context, p *pendulum.Pendulum, cfg Config, callback func(pendulum.Snapshot) bool) error {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return err
	}

	steps := cfg.Ticks()
	step := cfg.Step()

	initial := p.Snapshot()
	if cfg.StopOnNonFinite && !initial.IsFinite() {
		return nonFiniteError(0, initial)
	}
	if !callback(initial) {
		return nil
	}

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.Advance(step)
		snap := p.Snapshot()

		if cfg.StopOnNonFinite && !snap.IsFinite() {
			return nonFiniteError(i, snap)
		}
		if !callback(snap) {
			return nil
		}
	}

	return nil
}
