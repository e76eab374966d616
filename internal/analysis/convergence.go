package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ConvergenceRate fits log10(residual) against iteration and returns the
// rate in decades per iteration (positive when converging) with the R^2 of
// the fit. Non-positive residuals are skipped.
func ConvergenceRate(residuals []float64) (rate, r2 float64) {
	xs := make([]float64, 0, len(residuals))
	ys := make([]float64, 0, len(residuals))
	for i, r := range residuals {
		if r > 0 && !math.IsInf(r, 0) {
			xs = append(xs, float64(i))
			ys = append(ys, math.Log10(r))
		}
	}
	if len(xs) < 2 {
		return 0, 0
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return -beta, stat.RSquared(xs, ys, nil, alpha, beta)
}

// IterationsTo extrapolates the fitted rate to the iteration at which the
// residual reaches target. It returns -1 when the history does not
// converge, and the index of the first residual below target when one
// already is.
func IterationsTo(residuals []float64, target float64) int {
	for i, r := range residuals {
		if r > 0 && r < target {
			return i
		}
	}
	rate, _ := ConvergenceRate(residuals)
	if rate <= 0 || len(residuals) == 0 || target <= 0 {
		return -1
	}
	last := residuals[len(residuals)-1]
	if last <= 0 {
		return -1
	}
	more := math.Log10(last/target) / rate
	return len(residuals) - 1 + int(math.Ceil(more))
}
