package integrators

import "github.com/san-kum/nutilda/internal/fvm"

// Euler is the first-order implicit scheme (psi - psi0)/dt.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "Euler" }

func (e *Euler) Add(mx *fvm.Matrix, coeff, vol []float64, h *History) {
	rDt := 1 / h.Dt
	for c := range mx.Diag {
		a := coeff[c] * vol[c] * rDt
		mx.Diag[c] += a
		mx.Source[c] += a * h.Old[c]
	}
}
