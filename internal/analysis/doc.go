// Package analysis post-processes closure runs.
//
//   - [ConvergenceRate]: decades of residual drop per iteration, fitted
//   - [Profile]: line-averaged profile of a cell field along one axis
//   - [Sweep]: coefficient sweep recording one value per run
//
// # Convergence
//
// The residual history of a run is assumed to fall geometrically once the
// start-up transient has passed:
//
//	rate, r2 := analysis.ConvergenceRate(result.Residuals[10:])
//	if r2 > 0.9 && rate > 0 {
//	    n := analysis.IterationsTo(result.Residuals, 1e-6)
//	}
package analysis
