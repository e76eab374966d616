package sim

import (
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/turbulence"
)

// Source supplies the closure inputs of one outer iteration.
type Source interface {
	Inputs(dt float64, timeIndex int) turbulence.Inputs
}

// Step is what metrics and observers see after each correction. The
// fields are copies and may be kept.
type Step struct {
	Index   int
	Time    float64
	Perf    fvm.SolverPerformance
	Inputs  turbulence.Inputs
	NuTilda *field.Scalar
	Nut     *field.Scalar
	Err     error
}

type Metric interface {
	Name() string
	Observe(s Step)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Step)
}

type Config struct {
	Dt         float64
	Iterations int
	// ResidualTarget stops the run once the initial residual of a solve
	// drops below it. Zero disables the check.
	ResidualTarget float64
	// StopOnFailure ends the run at the first solve that does not converge.
	StopOnFailure bool
	// ValidateState ends the run when nuTilda holds NaN or Inf.
	ValidateState bool
}

type Result struct {
	Residuals    []float64
	Performances []fvm.SolverPerformance
	Times        []float64
	Metrics      map[string]float64
	Errors       []error
	StepsTaken   int
	Converged    bool

	NuTilda *field.Scalar
	Nut     *field.Scalar
}

// FinalResidual is the initial residual of the last solve, or zero.
func (r *Result) FinalResidual() float64 {
	if len(r.Residuals) == 0 {
		return 0
	}
	return r.Residuals[len(r.Residuals)-1]
}
