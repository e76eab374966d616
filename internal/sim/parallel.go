package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent cases concurrently. Each simulator owns its
// model, so nothing is shared between runs.
type Ensemble struct {
	runs  []*Simulator
	limit int
}

// NewEnsemble runs at most limit cases at once; limit < 1 means no limit.
func NewEnsemble(limit int, runs ...*Simulator) *Ensemble {
	return &Ensemble{runs: runs, limit: limit}
}

func (e *Ensemble) Len() int { return len(e.runs) }

// Run returns results in the order the simulators were given. The first
// failing run cancels the others.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.runs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, s := range e.runs {
		g.Go(func() error {
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
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
