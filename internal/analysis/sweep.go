package analysis

import (
	"context"

	"github.com/san-kum/nutilda/internal/sim"
)

// SweepPoint records what one run of a sweep produced.
type SweepPoint struct {
	Param  float64
	Value  float64
	Steps  int
	Failed bool
}

// Sweep runs one case per parameter value in [min, max] and records
// pick(result). A run that returns an error is marked Failed and the sweep
// carries on; cancelling ctx stops it.
func Sweep(
	ctx context.Context,
	min, max float64,
	steps int,
	run func(ctx context.Context, param float64) (*sim.Result, error),
	pick func(*sim.Result) float64,
) ([]SweepPoint, error) {
	if steps <= 1 {
		steps = 2
	}
	stride := (max - min) / float64(steps-1)

	points := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return points, err
		}
		param := min + float64(i)*stride
		res, err := run(ctx, param)
		pt := SweepPoint{Param: param}
		if err != nil || res == nil {
			pt.Failed = true
		} else {
			pt.Value = pick(res)
			pt.Steps = res.StepsTaken
		}
		points = append(points, pt)
	}
	return points, nil
}
