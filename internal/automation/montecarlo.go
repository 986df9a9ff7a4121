package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/pendulum"
	"github.com/san-kum/dpsim/internal/sim"
)

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the half-width, in degrees, of the uniform noise added
	// to both initial angles.
	Perturbation float64
	NumTrials    int
	Seed         int64
	Workers      int
}

// MonteCarloResult holds one perturbed trial. Divergence is the angular
// distance of the final state from the unperturbed reference run.
type MonteCarloResult struct {
	TrialID    int
	Theta1     float64
	Theta2     float64
	Final      pendulum.Snapshot
	Divergence float64
	Finite     bool
}

// RunMonteCarlo executes multiple trials with random perturbations. The
// perturbations depend only on Seed, so results are reproducible regardless
// of worker scheduling.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}
	base := cfg.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	runCfg := sim.FromConfig(base)

	refPendulum, err := base.NewPendulum()
	if err != nil {
		return nil, err
	}
	ref, err := sim.New().Run(ctx, refPendulum, runCfg)
	if err != nil {
		return nil, fmt.Errorf("reference run: %w", err)
	}
	refFinal := ref.Final()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	trials := make([]*config.Config, cfg.NumTrials)
	for i := range trials {
		c := base.Clone()
		c.Pendulum.Theta1 += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		c.Pendulum.Theta2 += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		trials[i] = c
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]MonteCarloResult, cfg.NumTrials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range trials {
		g.Go(func() error {
			p, err := c.NewPendulum()
			if err != nil {
				return err
			}
			res, err := sim.New().Run(ctx, p, runCfg)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}

			final := res.Final()
			results[i] = MonteCarloResult{
				TrialID:    i,
				Theta1:     c.Pendulum.Theta1,
				Theta2:     c.Pendulum.Theta2,
				Final:      final,
				Divergence: divergence(refFinal, final),
				Finite:     res.NonFinite < 0,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func divergence(a, b pendulum.Snapshot) float64 {
	d1 := analysis.WrapAngle(b.Theta1 - a.Theta1)
	d2 := analysis.WrapAngle(b.Theta2 - a.Theta2)
	return math.Hypot(d1, d2)
}

type MonteCarloSummary struct {
	Trials     int
	NonFinite  int
	Divergence analysis.Summary
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) MonteCarloSummary {
	divs := make([]float64, 0, len(results))
	summary := MonteCarloSummary{Trials: len(results)}
	for _, r := range results {
		if !r.Finite {
			summary.NonFinite++
		}
		divs = append(divs, r.Divergence)
	}
	summary.Divergence = analysis.Summarize(divs)
	return summary
}
