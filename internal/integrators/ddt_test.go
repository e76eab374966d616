package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/mesh"
)

func singleCell(t testing.TB) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewBox(mesh.BoxSpec{NX: 1, NY: 1, NZ: 1, Length: field.Vec3{1, 1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// decay integrates dpsi/dt = -psi from psi = 1 to t = 1.
func decay(t testing.TB, s Scheme, dt float64) float64 {
	m := singleCell(t)
	psi := []float64{1}
	coeff := []float64{1}
	var h History
	steps := int(math.Round(1 / dt))
	for i := 1; i <= steps; i++ {
		h.Advance(i, psi, dt)
		mx := fvm.NewMatrix(m)
		s.Add(mx, coeff, m.Volumes, &h)
		fvm.Sp(mx, m, []float64{1})
		psi[0] = mx.Source[0] / mx.Diag[0]
	}
	return psi[0]
}

func TestEulerFirstOrder(t *testing.T) {
	exact := math.Exp(-1)
	e1 := math.Abs(decay(t, NewEuler(), 0.1) - exact)
	e2 := math.Abs(decay(t, NewEuler(), 0.05) - exact)

	if ratio := e1 / e2; ratio < 1.8 || ratio > 2.2 {
		t.Errorf("Euler error ratio %.3f, expected about 2", ratio)
	}
}

func TestBackwardSecondOrder(t *testing.T) {
	exact := math.Exp(-1)
	e1 := math.Abs(decay(t, NewBackward(), 0.1) - exact)
	e2 := math.Abs(decay(t, NewBackward(), 0.05) - exact)

	if ratio := e1 / e2; ratio < 3.3 {
		t.Errorf("backward error ratio %.3f, expected about 4", ratio)
	}
	if eu := math.Abs(decay(t, NewEuler(), 0.05) - exact); e2 >= eu {
		t.Errorf("backward error %.3e not below Euler %.3e", e2, eu)
	}
}

func TestBackwardStartsAsEuler(t *testing.T) {
	m := singleCell(t)
	var h History
	h.Advance(1, []float64{2}, 0.1)

	a, b := fvm.NewMatrix(m), fvm.NewMatrix(m)
	NewEuler().Add(a, []float64{1}, m.Volumes, &h)
	NewBackward().Add(b, []float64{1}, m.Volumes, &h)

	if a.Diag[0] != b.Diag[0] || a.Source[0] != b.Source[0] {
		t.Errorf("first backward step differs from Euler: %v/%v vs %v/%v", b.Diag, b.Source, a.Diag, a.Source)
	}
}

func TestSteadyAddsNothing(t *testing.T) {
	m := singleCell(t)
	var h History
	h.Advance(1, []float64{3}, 0.1)
	mx := fvm.NewMatrix(m)
	NewSteady().Add(mx, []float64{1}, m.Volumes, &h)

	if mx.Diag[0] != 0 || mx.Source[0] != 0 {
		t.Errorf("steady scheme changed the matrix: %v %v", mx.Diag, mx.Source)
	}
	if !IsSteady(NewSteady()) || IsSteady(NewEuler()) {
		t.Error("IsSteady misidentifies schemes")
	}
}

func TestHistoryShiftsOnNewTimeIndex(t *testing.T) {
	var h History
	if h.Levels() != 0 {
		t.Fatalf("levels = %d before first advance", h.Levels())
	}

	h.Advance(1, []float64{1}, 0.1)
	h.Advance(1, []float64{5}, 0.1)
	if h.Old[0] != 1 || h.Levels() != 1 {
		t.Fatalf("outer iteration shifted levels: old=%v levels=%d", h.Old, h.Levels())
	}

	h.Advance(2, []float64{2}, 0.2)
	if h.Old[0] != 2 || h.OldOld[0] != 1 {
		t.Errorf("after shift old=%v oldOld=%v", h.Old, h.OldOld)
	}
	if h.Dt != 0.2 || h.Dt0 != 0.1 {
		t.Errorf("dt=%v dt0=%v", h.Dt, h.Dt0)
	}

	h.Reset()
	if h.Levels() != 0 {
		t.Errorf("levels = %d after reset", h.Levels())
	}
}

func TestNewByName(t *testing.T) {
	for _, name := range Names() {
		s, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, s.Name())
		}
	}

	if _, err := New("CrankNicolson"); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("unknown scheme error = %v", err)
	}
}
