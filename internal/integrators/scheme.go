// Package integrators provides the time-derivative schemes used when
// assembling a transport equation.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/fvm"
)

// Scheme adds coeff·dpsi/dt for one field to a matrix. coeff and vol are per
// cell; the old-time levels come from h.
type Scheme interface {
	Name() string
	Add(mx *fvm.Matrix, coeff, vol []float64, h *History)
}

// History keeps the old-time levels of one field. Old levels shift only when
// the time index changes, so several outer iterations within one time step
// all see the same old values.
type History struct {
	Old    []float64
	OldOld []float64
	Dt     float64
	Dt0    float64

	index  int
	primed bool
}

// Advance records current as the newest old level if timeIndex moved on.
func (h *History) Advance(timeIndex int, current []float64, dt float64) {
	switch {
	case !h.primed:
		h.Old = append(h.Old[:0], current...)
		h.OldOld = nil
		h.Dt0 = dt
		h.index = timeIndex
		h.primed = true
	case timeIndex != h.index:
		h.OldOld, h.Old = h.Old, h.OldOld
		h.Old = append(h.Old[:0], current...)
		h.Dt0 = h.Dt
		h.index = timeIndex
	}
	h.Dt = dt
}

// Reset forgets every stored level.
func (h *History) Reset() {
	*h = History{}
}

// Levels returns how many old levels are available.
func (h *History) Levels() int {
	switch {
	case !h.primed:
		return 0
	case h.OldOld == nil:
		return 1
	}
	return 2
}

// IsSteady reports whether s drops the time derivative.
func IsSteady(s Scheme) bool {
	_, ok := s.(*Steady)
	return ok
}

var schemes = map[string]func() Scheme{
	"Euler":       func() Scheme { return NewEuler() },
	"backward":    func() Scheme { return NewBackward() },
	"steadyState": func() Scheme { return NewSteady() },
}

// New returns the scheme registered under name.
func New(name string) (Scheme, error) {
	f, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("ddt scheme %q: %w", name, dynamo.ErrUnknownComponent)
	}
	return f(), nil
}

// Names lists the registered schemes.
func Names() []string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
