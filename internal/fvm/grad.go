package fvm

import (
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/mesh"
	"gonum.org/v1/gonum/unit"
)

var perLength = unit.Dimensions{unit.LengthDim: -1}

// GradScalar returns the Gauss-linear cell gradient of psi. Boundary values
// are extrapolated from the owner cell.
func GradScalar(m *mesh.Mesh, psi *field.Scalar) *field.Vector {
	g := field.New[field.Vec3]("grad("+psi.Name+")", field.MulDims(psi.Dims, perLength), m.Shape())
	for _, f := range m.Faces {
		vf := f.Weight*psi.Internal[f.Owner] + (1-f.Weight)*psi.Internal[f.Neighbour]
		g.Internal[f.Owner] = g.Internal[f.Owner].Add(f.Sf.Scale(vf))
		g.Internal[f.Neighbour] = g.Internal[f.Neighbour].Sub(f.Sf.Scale(vf))
	}
	for p, patch := range m.Patches {
		for i, f := range patch.Faces {
			g.Internal[f.Owner] = g.Internal[f.Owner].Add(f.Sf.Scale(psi.Boundary[p].Values[i]))
		}
	}
	for c, v := range m.Volumes {
		g.Internal[c] = g.Internal[c].Scale(1 / v)
	}
	extrapolate(m, g)
	return g
}

// GradVector returns the Gauss-linear gradient of u with entry (i, j)
// holding du_j/dx_i.
func GradVector(m *mesh.Mesh, u *field.Vector) *field.Tensor {
	g := field.New[field.Tensor3]("grad("+u.Name+")", field.MulDims(u.Dims, perLength), m.Shape())
	for _, f := range m.Faces {
		uf := u.Internal[f.Owner].Scale(f.Weight).Add(u.Internal[f.Neighbour].Scale(1 - f.Weight))
		t := f.Sf.Outer(uf)
		g.Internal[f.Owner] = g.Internal[f.Owner].Add(t)
		g.Internal[f.Neighbour] = g.Internal[f.Neighbour].Add(t.Scale(-1))
	}
	for p, patch := range m.Patches {
		for i, f := range patch.Faces {
			g.Internal[f.Owner] = g.Internal[f.Owner].Add(f.Sf.Outer(u.Boundary[p].Values[i]))
		}
	}
	for c, v := range m.Volumes {
		g.Internal[c] = g.Internal[c].Scale(1 / v)
	}
	extrapolate(m, g)
	return g
}

func extrapolate[T any](m *mesh.Mesh, g *field.Field[T]) {
	for p, patch := range m.Patches {
		g.Boundary[p].Kind = field.ZeroGradient
		for i, f := range patch.Faces {
			g.Boundary[p].Values[i] = g.Internal[f.Owner]
		}
	}
}
