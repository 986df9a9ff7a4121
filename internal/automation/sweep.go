package automation

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/logging"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/pendulum"
	"github.com/san-kum/dpsim/internal/sim"
)

// SweepParams are the physical parameters RunSweep can vary.
var SweepParams = []string{"length1", "length2", "mass1", "mass2", "gravity"}

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Final      pendulum.Snapshot
	MaxEnergy  float64
	MinEnergy  float64
	Flips      int
}

func isSweepParam(name string) bool {
	for _, p := range SweepParams {
		if p == name {
			return true
		}
	}
	return false
}

// RunSweep executes a parameter sweep. NumSteps values are spaced evenly
// over [ParamMin, ParamMax]; a single step runs ParamMin only.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if !isSweepParam(sweep.ParamName) {
		return nil, fmt.Errorf("cannot sweep %q: must be one of %v", sweep.ParamName, SweepParams)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		p, err := cfg.NewPendulum()
		if err != nil {
			return nil, err
		}

		flips := metrics.NewFlips()
		s := sim.New()
		s.AddMetric(flips)

		result, err := s.Run(ctx, p, sim.FromConfig(cfg))
		if err != nil {
			return nil, err
		}

		minE, maxE := energyRange(result.Samples)
		results = append(results, SweepResult{
			ParamValue: paramVal,
			Final:      result.Final(),
			MaxEnergy:  maxE,
			MinEnergy:  minE,
			Flips:      int(flips.Value()),
		})

		logging.Logger().Debug("sweep step", "index", i+1, "of", sweep.NumSteps, "param", sweep.ParamName, "value", paramVal)
	}

	return results, nil
}

func energyRange(samples []pendulum.Snapshot) (minE, maxE float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	minE, maxE = samples[0].Energy, samples[0].Energy
	for _, s := range samples[1:] {
		minE = math.Min(minE, s.Energy)
		maxE = math.Max(maxE, s.Energy)
	}
	return minE, maxE
}
