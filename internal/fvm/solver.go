package fvm

import (
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SolverPerformance reports the outcome of one linear solve.
type SolverPerformance struct {
	Solver          string
	Field           string
	InitialResidual float64
	FinalResidual   float64
	Iterations      int
	Converged       bool
}

func (p SolverPerformance) String() string {
	return fmt.Sprintf("%s: Solving for %s, Initial residual = %.6g, Final residual = %.6g, No Iterations %d",
		p.Solver, p.Field, p.InitialResidual, p.FinalResidual, p.Iterations)
}

// SolveError is returned when a solve stops above tolerance. It carries
// the performance so callers can decide on relaxation or retry.
type SolveError struct {
	Perf SolverPerformance
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%v: %s", dynamo.ErrNotConverged, e.Perf)
}

func (e *SolveError) Unwrap() error { return dynamo.ErrNotConverged }

// Controls are the stopping criteria shared by the iterative solvers.
type Controls struct {
	Tolerance float64
	RelTol    float64
	MaxIter   int
	MinIter   int
}

// DefaultControls mirror typical settings for a turbulence scalar.
func DefaultControls() Controls {
	return Controls{Tolerance: 1e-8, RelTol: 0, MaxIter: 1000}
}

func (c Controls) done(initial, current float64, iter int) bool {
	if iter < c.MinIter {
		return false
	}
	return current < c.Tolerance || (c.RelTol > 0 && current < c.RelTol*initial)
}

// Solver solves a Matrix in place on x.
type Solver interface {
	Name() string
	Solve(mx *Matrix, fieldName string, x []float64) (SolverPerformance, error)
}

func finish(perf SolverPerformance) (SolverPerformance, error) {
	if !perf.Converged {
		return perf, &SolveError{Perf: perf}
	}
	return perf, nil
}

// GaussSeidel is a symmetric Gauss-Seidel smoother run to tolerance.
type GaussSeidel struct {
	Controls
	// Sweeps between residual checks.
	Sweeps int
}

func NewGaussSeidel(c Controls) *GaussSeidel {
	return &GaussSeidel{Controls: c, Sweeps: 1}
}

func (s *GaussSeidel) Name() string { return "smoothSolver" }

func (s *GaussSeidel) sweep(mx *Matrix, rows [][]offDiag, x []float64, reverse bool) {
	n := len(x)
	for k := 0; k < n; k++ {
		c := k
		if reverse {
			c = n - 1 - k
		}
		sum := mx.Source[c]
		for _, e := range rows[c] {
			if e.upper {
				sum -= mx.Upper[e.face] * x[e.other]
			} else {
				sum -= mx.Lower[e.face] * x[e.other]
			}
		}
		x[c] = sum / mx.Diag[c]
	}
}

func (s *GaussSeidel) Solve(mx *Matrix, fieldName string, x []float64) (SolverPerformance, error) {
	perf := SolverPerformance{Solver: s.Name(), Field: fieldName}
	perf.InitialResidual = mx.NormalisedResidual(x)
	perf.FinalResidual = perf.InitialResidual
	if s.done(perf.InitialResidual, perf.FinalResidual, 0) {
		perf.Converged = true
		return perf, nil
	}

	rows := mx.rowsOf()
	sweeps := s.Sweeps
	if sweeps < 1 {
		sweeps = 1
	}
	for perf.Iterations < s.MaxIter {
		for k := 0; k < sweeps; k++ {
			s.sweep(mx, rows, x, false)
			s.sweep(mx, rows, x, true)
		}
		perf.Iterations += sweeps
		perf.FinalResidual = mx.NormalisedResidual(x)
		if s.done(perf.InitialResidual, perf.FinalResidual, perf.Iterations) {
			perf.Converged = true
			break
		}
	}
	return finish(perf)
}

// BiCGStab is a diagonally preconditioned stabilised bi-conjugate
// gradient solver for non-symmetric systems.
type BiCGStab struct {
	Controls
}

func NewBiCGStab(c Controls) *BiCGStab { return &BiCGStab{Controls: c} }

func (s *BiCGStab) Name() string { return "PBiCGStab" }

func (s *BiCGStab) Solve(mx *Matrix, fieldName string, x []float64) (SolverPerformance, error) {
	n := len(x)
	perf := SolverPerformance{Solver: s.Name(), Field: fieldName}

	ax := mx.Amul(x, make([]float64, n))
	r := make([]float64, n)
	floats.SubTo(r, mx.Source, ax)
	norm := mx.normFactor(x, ax)
	perf.InitialResidual = floats.Norm(r, 1) / norm
	perf.FinalResidual = perf.InitialResidual
	if s.done(perf.InitialResidual, perf.FinalResidual, 0) {
		perf.Converged = true
		return perf, nil
	}

	rHat := make([]float64, n)
	copy(rHat, r)
	p := make([]float64, n)
	v := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	sv := make([]float64, n)
	t := make([]float64, n)

	precond := func(dst, src []float64) {
		for i := range dst {
			dst[i] = src[i] / mx.Diag[i]
		}
	}

	rho, alpha, omega := 1.0, 1.0, 1.0
	for perf.Iterations < s.MaxIter {
		rhoOld := rho
		rho = floats.Dot(rHat, r)
		if math.Abs(rho) < 1e-300 {
			break
		}
		if perf.Iterations == 0 {
			copy(p, r)
		} else {
			beta := (rho / rhoOld) * (alpha / omega)
			// p = r + beta (p - omega v)
			floats.AddScaled(p, -omega, v)
			floats.Scale(beta, p)
			floats.Add(p, r)
		}

		precond(y, p)
		mx.Amul(y, v)
		alpha = rho / floats.Dot(rHat, v)

		// s = r - alpha v
		copy(sv, r)
		floats.AddScaled(sv, -alpha, v)
		perf.Iterations++

		if floats.Norm(sv, 1)/norm < s.Tolerance {
			floats.AddScaled(x, alpha, y)
			perf.FinalResidual = floats.Norm(sv, 1) / norm
			perf.Converged = true
			break
		}

		precond(z, sv)
		mx.Amul(z, t)
		tt := floats.Dot(t, t)
		if tt == 0 {
			floats.AddScaled(x, alpha, y)
			break
		}
		omega = floats.Dot(t, sv) / tt

		floats.AddScaled(x, alpha, y)
		floats.AddScaled(x, omega, z)

		copy(r, sv)
		floats.AddScaled(r, -omega, t)

		perf.FinalResidual = floats.Norm(r, 1) / norm
		if s.done(perf.InitialResidual, perf.FinalResidual, perf.Iterations) {
			perf.Converged = true
			break
		}
		if omega == 0 {
			break
		}
	}
	if !perf.Converged {
		perf.FinalResidual = mx.NormalisedResidual(x)
		perf.Converged = s.done(perf.InitialResidual, perf.FinalResidual, perf.Iterations)
	}
	return finish(perf)
}

// Direct factorises the dense system with gonum's LU. Intended for small
// meshes and for checking the iterative solvers.
type Direct struct{}

func NewDirect() *Direct { return &Direct{} }

func (s *Direct) Name() string { return "directLU" }

func (s *Direct) Solve(mx *Matrix, fieldName string, x []float64) (SolverPerformance, error) {
	perf := SolverPerformance{Solver: s.Name(), Field: fieldName}
	perf.InitialResidual = mx.NormalisedResidual(x)

	var lu mat.LU
	lu.Factorize(mx.Dense())
	b := mat.NewVecDense(len(x), append([]float64(nil), mx.Source...))
	dst := mat.NewVecDense(len(x), nil)
	if err := lu.SolveVecTo(dst, false, b); err != nil {
		perf.FinalResidual = perf.InitialResidual
		return perf, fmt.Errorf("%s for %s: %v: %w", s.Name(), fieldName, err, &SolveError{Perf: perf})
	}
	copy(x, dst.RawVector().Data)

	perf.Iterations = 1
	perf.FinalResidual = mx.NormalisedResidual(x)
	perf.Converged = true
	return perf, nil
}
