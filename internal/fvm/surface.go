package fvm

import (
	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/mesh"
	"gonum.org/v1/gonum/unit"
)

// Surface holds one value per face: Internal per internal face, Boundary
// per patch face.
type Surface struct {
	Name     string
	Dims     unit.Dimensions
	Internal []float64
	Boundary [][]float64
}

// NewSurface allocates a zero surface field on m.
func NewSurface(name string, dims unit.Dimensions, m *mesh.Mesh) *Surface {
	s := &Surface{
		Name:     name,
		Dims:     dims,
		Internal: make([]float64, len(m.Faces)),
		Boundary: make([][]float64, len(m.Patches)),
	}
	for p, patch := range m.Patches {
		s.Boundary[p] = make([]float64, len(patch.Faces))
	}
	return s
}

// Scale returns a copy multiplied by a cell field interpolated to faces.
func (s *Surface) Scale(m *mesh.Mesh, by *field.Scalar) *Surface {
	w := Interpolate(m, by)
	r := &Surface{
		Name:     s.Name,
		Dims:     field.MulDims(s.Dims, by.Dims),
		Internal: make([]float64, len(s.Internal)),
		Boundary: make([][]float64, len(s.Boundary)),
	}
	for f, v := range s.Internal {
		r.Internal[f] = v * w.Internal[f]
	}
	for p := range s.Boundary {
		r.Boundary[p] = make([]float64, len(s.Boundary[p]))
		for i, v := range s.Boundary[p] {
			r.Boundary[p][i] = v * w.Boundary[p][i]
		}
	}
	return r
}

// Interpolate linearly interpolates a cell field to faces. Boundary faces
// take the patch values.
func Interpolate(m *mesh.Mesh, psi *field.Scalar) *Surface {
	s := NewSurface(psi.Name+"f", psi.Dims, m)
	for i, f := range m.Faces {
		s.Internal[i] = f.Weight*psi.Internal[f.Owner] + (1-f.Weight)*psi.Internal[f.Neighbour]
	}
	for p := range m.Patches {
		copy(s.Boundary[p], psi.Boundary[p].Values)
	}
	return s
}

// FluxOf returns the volumetric face flux U_f · S_f of a velocity field.
func FluxOf(m *mesh.Mesh, u *field.Vector) *Surface {
	s := NewSurface("phi", field.MulDims(u.Dims, unit.Dimensions{unit.LengthDim: 2}), m)
	for i, f := range m.Faces {
		uf := u.Internal[f.Owner].Scale(f.Weight).Add(u.Internal[f.Neighbour].Scale(1 - f.Weight))
		s.Internal[i] = uf.Dot(f.Sf)
	}
	for p, patch := range m.Patches {
		for i, f := range patch.Faces {
			s.Boundary[p][i] = u.Boundary[p].Values[i].Dot(f.Sf)
		}
	}
	return s
}
