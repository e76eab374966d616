package integrators

import "github.com/san-kum/nutilda/internal/fvm"

// Backward is the second-order three-level scheme with variable step
// support. Until two old levels exist it behaves like Euler.
type Backward struct {
	euler Euler
}

func NewBackward() *Backward {
	return &Backward{}
}

func (b *Backward) Name() string { return "backward" }

func (b *Backward) Add(mx *fvm.Matrix, coeff, vol []float64, h *History) {
	if h.Levels() < 2 {
		b.euler.Add(mx, coeff, vol, h)
		return
	}
	dt, dt0 := h.Dt, h.Dt0
	c00 := dt * dt / (dt0 * (dt + dt0))
	cN := 1 + dt/(dt+dt0)
	c0 := cN + c00

	rDt := 1 / dt
	for c := range mx.Diag {
		a := coeff[c] * vol[c] * rDt
		mx.Diag[c] += cN * a
		mx.Source[c] += a * (c0*h.Old[c] - c00*h.OldOld[c])
	}
}
