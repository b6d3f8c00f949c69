package sim

import (
	"context"
	"sync"

	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/todo"
)

type EnsembleResult struct {
	Seed    int64
	Metrics map[string]float64
	Items   []todo.Item
}

// Ensemble runs the same layout headlessly under several seeds in parallel.
// Each run owns its own runner, so nothing is shared between goroutines.
type Ensemble struct {
	cfg       config.PhysicsConfig
	items     []todo.Item
	size      Size
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

func NewEnsemble(cfg config.PhysicsConfig, items []todo.Item, size Size, numRuns int, seedStart int64, metrics func() []Metric) *Ensemble {
	return &Ensemble{
		cfg:       cfg,
		items:     items,
		size:      size,
		numRuns:   numRuns,
		seedStart: seedStart,
		metrics:   metrics,
	}
}

func (e *Ensemble) Run(ctx context.Context, frames int) ([]EnsembleResult, error) {
	results := make([]EnsembleResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := e.cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			r := NewRunner(cfgCopy, append([]todo.Item(nil), e.items...))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					r.AddMetric(m)
				}
			}
			r.Resize(e.size)
			defer r.Engine().Close()

			for f := 0; f < frames; f++ {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					return
				}
				r.Step(1)
			}
			results[idx] = EnsembleResult{Seed: cfgCopy.Seed, Metrics: r.Metrics(), Items: r.Items()}
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
