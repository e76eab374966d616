package fvm

import (
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/mesh"
)

// Div adds the upwind discretisation of div(flux psi).
func Div(mx *Matrix, m *mesh.Mesh, flux *Surface, psi *field.Scalar) {
	for f, face := range m.Faces {
		F := flux.Internal[f]
		if F >= 0 {
			mx.Diag[face.Owner] += F
			mx.Lower[f] -= F
		} else {
			mx.Upper[f] += F
			mx.Diag[face.Neighbour] -= F
		}
	}
	for p, patch := range m.Patches {
		bp := psi.Boundary[p]
		for i, face := range patch.Faces {
			F := flux.Boundary[p][i]
			if bp.Kind == field.ZeroGradient {
				mx.Diag[face.Owner] += F
				continue
			}
			mx.Source[face.Owner] -= F * bp.Values[i]
		}
	}
}

// Laplacian adds -div(gamma grad psi) with gamma given on faces.
func Laplacian(mx *Matrix, m *mesh.Mesh, gamma *Surface, psi *field.Scalar) {
	for f, face := range m.Faces {
		coeff := gamma.Internal[f] * face.Sf.Mag() * face.DeltaCoeff
		mx.Diag[face.Owner] += coeff
		mx.Diag[face.Neighbour] += coeff
		mx.Upper[f] -= coeff
		mx.Lower[f] -= coeff
	}
	for p, patch := range m.Patches {
		bp := psi.Boundary[p]
		if bp.Kind == field.ZeroGradient {
			continue
		}
		for i, face := range patch.Faces {
			coeff := gamma.Boundary[p][i] * face.Sf.Mag() * face.DeltaCoeff
			mx.Diag[face.Owner] += coeff
			mx.Source[face.Owner] += coeff * bp.Values[i]
		}
	}
}

// Sp adds the implicit sink coeff*psi integrated over each cell.
func Sp(mx *Matrix, m *mesh.Mesh, coeff []float64) {
	for c, v := range m.Volumes {
		mx.Diag[c] += coeff[c] * v
	}
}

// Su adds the explicit source su integrated over each cell.
func Su(mx *Matrix, m *mesh.Mesh, su []float64) {
	for c, v := range m.Volumes {
		mx.Source[c] += su[c] * v
	}
}

// SuSp adds the sink coeff*psi implicitly where coeff is positive and
// explicitly (evaluated at psi) where it is negative, so the diagonal never
// loses dominance.
func SuSp(mx *Matrix, m *mesh.Mesh, coeff, psi []float64) {
	for c, v := range m.Volumes {
		if coeff[c] > 0 {
			mx.Diag[c] += coeff[c] * v
		} else {
			mx.Source[c] -= coeff[c] * psi[c] * v
		}
	}
}
