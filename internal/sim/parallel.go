package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dpsim/internal/pendulum"
)

// Ensemble runs independent pendulums concurrently. Each run gets its own
// Simulator and a fresh metric set from the factory.
type Ensemble struct {
	newMetrics func() []Metric
	limit      int
}

func NewEnsemble(newMetrics func() []Metric) *Ensemble {
	return &Ensemble{newMetrics: newMetrics, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit caps the number of concurrent runs. n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run simulates every pendulum with the same settings. Results are indexed
// like pendulums. The first error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, pendulums []*pendulum.Pendulum, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(pendulums))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, p := range pendulums {
		g.Go(func() error {
			s := New()
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, p, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
