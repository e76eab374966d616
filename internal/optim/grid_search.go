package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
)

// ErrNoFeasible is returned when every combination of a search failed.
var ErrNoFeasible = errors.New("optim: no combination evaluated successfully")

// Objective scores one combination of parameter values. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Point is one evaluated combination. Failed combinations carry Err and an
// infinite Cost.
type Point struct {
	Params map[string]float64
	Cost   float64
	Err    error
}

// GridSearch evaluates every combination of a set of named value lists.
type GridSearch struct {
	names  []string
	values [][]float64
}

func NewGridSearch(names []string, values [][]float64) (*GridSearch, error) {
	if len(names) == 0 {
		return nil, &dynamo.ConfigError{Key: "params", Value: names, Reason: "must name at least one parameter"}
	}
	if len(names) != len(values) {
		return nil, &dynamo.ConfigError{Key: "params", Value: len(values), Reason: fmt.Sprintf("need one value list per name (%d)", len(names))}
	}
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if seen[name] {
			return nil, &dynamo.ConfigError{Key: name, Value: name, Reason: "listed twice"}
		}
		seen[name] = true
		if len(values[i]) == 0 {
			return nil, &dynamo.ConfigError{Key: name, Value: values[i], Reason: "needs at least one value"}
		}
	}
	return &GridSearch{names: names, values: values}, nil
}

// Size is the number of combinations.
func (g *GridSearch) Size() int {
	n := 1
	for _, v := range g.values {
		n *= len(v)
	}
	return n
}

// Search evaluates the combinations in order, the last name varying
// fastest. It returns the lowest-cost point and every evaluated point.
// Cancelling ctx stops the search and returns what was evaluated so far.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (Point, []Point, error) {
	best := Point{Cost: math.Inf(1)}
	points := make([]Point, 0, g.Size())
	idx := make([]int, len(g.names))

	for {
		if err := ctx.Err(); err != nil {
			return best, points, fmt.Errorf("%w after %d of %d: %v", dynamo.ErrContextCanceled, len(points), g.Size(), err)
		}

		params := make(map[string]float64, len(g.names))
		for i, name := range g.names {
			params[name] = g.values[i][idx[i]]
		}
		pt := Point{Params: params}
		pt.Cost, pt.Err = obj(ctx, params)
		if pt.Err != nil || math.IsNaN(pt.Cost) {
			pt.Cost = math.Inf(1)
		}
		points = append(points, pt)
		if pt.Err == nil && pt.Cost < best.Cost {
			best = pt
		}

		if !next(idx, g.values) {
			break
		}
	}

	if best.Params == nil {
		return best, points, ErrNoFeasible
	}
	return best, points, nil
}

// next advances idx like an odometer and reports false once it wraps.
func next(idx []int, values [][]float64) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(values[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}

// Target returns the cost |got - want| for matching a reference value.
func Target(got, want float64) float64 {
	return math.Abs(got - want)
}
