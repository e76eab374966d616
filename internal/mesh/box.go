package mesh

import (
	"fmt"
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
)

// Box patch names, in patch order.
const (
	XMin = "xMin"
	XMax = "xMax"
	YMin = "yMin"
	YMax = "yMax"
	ZMin = "zMin"
	ZMax = "zMax"
)

// BoxSpec describes a block of hexahedra.
type BoxSpec struct {
	NX, NY, NZ int
	Length     field.Vec3
	// GradingY is the ratio of the last to the first cell height in y.
	// Values <= 0 mean uniform spacing.
	GradingY float64
	// Walls lists patch names treated as solid walls.
	Walls []string
}

// NewBox builds a structured block and stores it in face-addressed form.
func NewBox(spec BoxSpec) (*Mesh, error) {
	nx, ny, nz := spec.NX, spec.NY, spec.NZ
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, &dynamo.ConfigError{Key: "cells", Value: [3]int{nx, ny, nz}, Reason: "must be at least 1 in every direction"}
	}
	for i, l := range spec.Length {
		if !(l > 0) {
			return nil, &dynamo.ConfigError{Key: fmt.Sprintf("length[%d]", i), Value: l, Reason: "must be positive"}
		}
	}

	xs := spacing(nx, spec.Length[0], 1)
	ys := spacing(ny, spec.Length[1], spec.GradingY)
	zs := spacing(nz, spec.Length[2], 1)

	pid := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	cid := func(i, j, k int) int { return i + nx*(j+ny*k) }

	m := &Mesh{
		Points: make([]field.Vec3, (nx+1)*(ny+1)*(nz+1)),
		Cells:  make([][8]int, nx*ny*nz),
	}
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				m.Points[pid(i, j, k)] = field.Vec3{xs[i], ys[j], zs[k]}
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				m.Cells[cid(i, j, k)] = [8]int{
					pid(i, j, k), pid(i+1, j, k), pid(i+1, j+1, k), pid(i, j+1, k),
					pid(i, j, k+1), pid(i+1, j, k+1), pid(i+1, j+1, k+1), pid(i, j+1, k+1),
				}
			}
		}
	}

	// quads ordered so the right-hand normal points along +x, +y, +z
	xQuad := func(i, j, k int) [4]int { return [4]int{pid(i, j, k), pid(i, j+1, k), pid(i, j+1, k+1), pid(i, j, k+1)} }
	yQuad := func(i, j, k int) [4]int { return [4]int{pid(i, j, k), pid(i, j, k+1), pid(i+1, j, k+1), pid(i+1, j, k)} }
	zQuad := func(i, j, k int) [4]int { return [4]int{pid(i, j, k), pid(i+1, j, k), pid(i+1, j+1, k), pid(i, j+1, k)} }
	flip := func(q [4]int) [4]int { return [4]int{q[0], q[3], q[2], q[1]} }

	// internal faces in owner order so that owner < neighbour
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := cid(i, j, k)
				if i+1 < nx {
					m.Faces = append(m.Faces, Face{Owner: c, Neighbour: cid(i+1, j, k), Points: xQuad(i+1, j, k)})
				}
				if j+1 < ny {
					m.Faces = append(m.Faces, Face{Owner: c, Neighbour: cid(i, j+1, k), Points: yQuad(i, j+1, k)})
				}
				if k+1 < nz {
					m.Faces = append(m.Faces, Face{Owner: c, Neighbour: cid(i, j, k+1), Points: zQuad(i, j, k+1)})
				}
			}
		}
	}

	walls := make(map[string]bool, len(spec.Walls))
	for _, w := range spec.Walls {
		walls[w] = true
	}
	newPatch := func(name string) Patch {
		kind := Generic
		if walls[name] {
			kind = Wall
		}
		return Patch{Name: name, Kind: kind}
	}

	xMin, xMax := newPatch(XMin), newPatch(XMax)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			xMin.Faces = append(xMin.Faces, BoundaryFace{Owner: cid(0, j, k), Points: flip(xQuad(0, j, k))})
			xMax.Faces = append(xMax.Faces, BoundaryFace{Owner: cid(nx-1, j, k), Points: xQuad(nx, j, k)})
		}
	}
	yMin, yMax := newPatch(YMin), newPatch(YMax)
	for k := 0; k < nz; k++ {
		for i := 0; i < nx; i++ {
			yMin.Faces = append(yMin.Faces, BoundaryFace{Owner: cid(i, 0, k), Points: flip(yQuad(i, 0, k))})
			yMax.Faces = append(yMax.Faces, BoundaryFace{Owner: cid(i, ny-1, k), Points: yQuad(i, ny, k)})
		}
	}
	zMin, zMax := newPatch(ZMin), newPatch(ZMax)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			zMin.Faces = append(zMin.Faces, BoundaryFace{Owner: cid(i, j, 0), Points: flip(zQuad(i, j, 0))})
			zMax.Faces = append(zMax.Faces, BoundaryFace{Owner: cid(i, j, nz-1), Points: zQuad(i, j, nz)})
		}
	}
	m.Patches = []Patch{xMin, xMax, yMin, yMax, zMin, zMax}

	for _, w := range spec.Walls {
		if m.PatchIndex(w) < 0 {
			return nil, &dynamo.ConfigError{Key: "walls", Value: w, Reason: "is not a box patch"}
		}
	}

	if err := m.updateGeometry(); err != nil {
		return nil, err
	}
	return m, nil
}

// spacing returns n+1 coordinates on [0, l] with geometric grading ratio
// between the last and first interval.
func spacing(n int, l, grading float64) []float64 {
	xs := make([]float64, n+1)
	if grading <= 0 || grading == 1 || n == 1 {
		for i := range xs {
			xs[i] = l * float64(i) / float64(n)
		}
		return xs
	}
	r := math.Pow(grading, 1/float64(n-1))
	first := l * (r - 1) / (math.Pow(r, float64(n)) - 1)
	h := first
	for i := 1; i <= n; i++ {
		xs[i] = xs[i-1] + h
		h *= r
	}
	xs[n] = l
	return xs
}
