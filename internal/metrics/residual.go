package metrics

import (
	"math"

	"github.com/san-kum/nutilda/internal/sim"
)

// Residual reports the initial residual of the latest solve.
type Residual struct {
	last    float64
	samples int
}

func NewResidual() *Residual { return &Residual{} }

func (r *Residual) Name() string { return "residual" }

func (r *Residual) Observe(s sim.Step) {
	r.last = s.Perf.InitialResidual
	r.samples++
}

func (r *Residual) Value() float64 { return r.last }

func (r *Residual) Reset() {
	r.last = 0
	r.samples = 0
}

// ResidualDrop reports how many decades the initial residual fell between
// the first and the latest solve.
type ResidualDrop struct {
	first, last float64
	samples     int
}

func NewResidualDrop() *ResidualDrop { return &ResidualDrop{} }

func (r *ResidualDrop) Name() string { return "residual_drop" }

func (r *ResidualDrop) Observe(s sim.Step) {
	if r.samples == 0 {
		r.first = s.Perf.InitialResidual
	}
	r.last = s.Perf.InitialResidual
	r.samples++
}

func (r *ResidualDrop) Value() float64 {
	if r.samples < 2 || r.first <= 0 || r.last <= 0 {
		return 0
	}
	return math.Log10(r.first / r.last)
}

func (r *ResidualDrop) Reset() {
	r.first, r.last = 0, 0
	r.samples = 0
}

// SolveFailures counts solves that stopped above tolerance.
type SolveFailures struct {
	count int
}

func NewSolveFailures() *SolveFailures { return &SolveFailures{} }

func (f *SolveFailures) Name() string { return "solve_failures" }

func (f *SolveFailures) Observe(s sim.Step) {
	if s.Err != nil || !s.Perf.Converged {
		f.count++
	}
}

func (f *SolveFailures) Value() float64 { return float64(f.count) }

func (f *SolveFailures) Reset() { f.count = 0 }
