package mesh

import (
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
)

// WallDistance returns the distance from every cell centre and boundary
// face centre to the nearest wall face. The result is cached until the mesh
// moves; callers get a copy and may keep it.
//
// With no wall patches every distance is +Inf.
func (m *Mesh) WallDistance() *field.Scalar {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wallDist == nil || m.wallVer != m.version {
		m.wallDist = m.computeWallDistance()
		m.wallVer = m.version
	}
	return m.wallDist.Clone()
}

type wallFace struct {
	centre, normal field.Vec3
}

func (m *Mesh) wallFaces() []wallFace {
	var faces []wallFace
	for _, p := range m.Patches {
		if p.Kind != Wall {
			continue
		}
		for _, f := range p.Faces {
			faces = append(faces, wallFace{centre: f.Centre, normal: f.Sf.Scale(1 / f.Sf.Mag())})
		}
	}
	return faces
}

// nearest finds the closest wall face centre and returns the normal
// distance to its plane.
func nearest(x field.Vec3, walls []wallFace) float64 {
	if len(walls) == 0 {
		return math.Inf(1)
	}
	best, bestD2 := 0, math.Inf(1)
	for i, w := range walls {
		d := x.Sub(w.centre)
		if d2 := d.Dot(d); d2 < bestD2 {
			best, bestD2 = i, d2
		}
	}
	return math.Abs(x.Sub(walls[best].centre).Dot(walls[best].normal))
}

func (m *Mesh) computeWallDistance() *field.Scalar {
	y := field.New[float64]("yWall", field.DimLength, m.Shape())
	walls := m.wallFaces()

	dynamo.ForEach(len(m.Cells), func(c int) {
		y.Internal[c] = nearest(m.Centres[c], walls)
	})
	for p, patch := range m.Patches {
		for i, f := range patch.Faces {
			if patch.Kind == Wall {
				y.Boundary[p].Values[i] = 0
				continue
			}
			y.Boundary[p].Values[i] = nearest(f.Centre, walls)
		}
	}
	return y
}

// CubeRootVolDelta returns the filter width coeff*V^(1/3). Boundary faces
// take the value of their owner cell.
func (m *Mesh) CubeRootVolDelta(coeff float64) *field.Scalar {
	d := field.New[float64]("delta", field.DimLength, m.Shape())
	for c, v := range m.Volumes {
		d.Internal[c] = coeff * math.Cbrt(v)
	}
	for p, patch := range m.Patches {
		for i, f := range patch.Faces {
			d.Boundary[p].Values[i] = d.Internal[f.Owner]
		}
	}
	return d
}
