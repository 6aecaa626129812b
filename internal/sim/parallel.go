package sim

import (
	"context"
	"sync"
)

// BuildFunc constructs the world and run config for ensemble member i.
type BuildFunc func(i int) (*World, Config, error)

// Ensemble runs independent worlds concurrently, one goroutine each.
type Ensemble struct {
	build      BuildFunc
	newMetrics func() []Metric
	numRuns    int
}

func NewEnsemble(numRuns int, build BuildFunc) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns}
}

// WithMetrics sets a factory so every run observes its own metric instances.
func (e *Ensemble) WithMetrics(f func() []Metric) *Ensemble {
	e.newMetrics = f
	return e
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			w, cfg, err := e.build(idx)
			if err != nil {
				errs[idx] = err
				return
			}

			s := New()
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, w, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
