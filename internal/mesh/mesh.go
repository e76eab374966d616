// Package mesh provides a face-addressed finite-volume mesh.
//
// Cells are hexahedra stored by their eight point labels; faces carry owner
// and neighbour cells with the area vector pointing out of the owner.
// Geometry is derived from the points, so moving points through [Mesh.Move]
// rebuilds every geometric quantity and invalidates the cached wall
// distance.
package mesh

import (
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
)

// PatchKind tags boundary patches that count as solid walls.
type PatchKind int

const (
	Generic PatchKind = iota
	Wall
)

func (k PatchKind) String() string {
	if k == Wall {
		return "wall"
	}
	return "patch"
}

// Face is an internal face between Owner and Neighbour.
type Face struct {
	Owner, Neighbour int
	Points           [4]int

	Sf     field.Vec3 // area vector, owner to neighbour
	Centre field.Vec3
	// Weight is the owner share of linear interpolation.
	Weight float64
	// DeltaCoeff is 1/(n·d) between the two cell centres.
	DeltaCoeff float64
}

// BoundaryFace is a face on a patch with a single owner cell.
type BoundaryFace struct {
	Owner  int
	Points [4]int

	Sf         field.Vec3 // outward area vector
	Centre     field.Vec3
	DeltaCoeff float64
}

// Patch is a named group of boundary faces.
type Patch struct {
	Name  string
	Kind  PatchKind
	Faces []BoundaryFace
}

// Mesh holds topology and derived geometry.
type Mesh struct {
	Points  []field.Vec3
	Cells   [][8]int
	Faces   []Face
	Patches []Patch

	Centres []field.Vec3
	Volumes []float64

	mu       sync.Mutex
	version  int
	wallDist *field.Scalar
	wallVer  int
}

// NumCells returns the cell count.
func (m *Mesh) NumCells() int { return len(m.Cells) }

// Version increases every time the geometry changes.
func (m *Mesh) Version() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Shape returns the layout fields need to size themselves on this mesh.
func (m *Mesh) Shape() field.Shape {
	s := field.Shape{Cells: len(m.Cells), Patches: make([]field.PatchShape, len(m.Patches))}
	for i, p := range m.Patches {
		owners := make([]int, len(p.Faces))
		for j, f := range p.Faces {
			owners[j] = f.Owner
		}
		s.Patches[i] = field.PatchShape{Name: p.Name, Owners: owners}
	}
	return s
}

// PatchIndex returns the index of the named patch or -1.
func (m *Mesh) PatchIndex(name string) int {
	for i, p := range m.Patches {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Move displaces every point by disp and rebuilds the geometry.
func (m *Mesh) Move(disp func(p field.Vec3) field.Vec3) error {
	for i, p := range m.Points {
		m.Points[i] = p.Add(disp(p))
	}
	if err := m.updateGeometry(); err != nil {
		return err
	}
	m.mu.Lock()
	m.version++
	m.mu.Unlock()
	return nil
}

func quadGeometry(pts []field.Vec3, q [4]int) (sf, centre field.Vec3) {
	p0, p1, p2, p3 := pts[q[0]], pts[q[1]], pts[q[2]], pts[q[3]]
	sf = p2.Sub(p0).Cross(p3.Sub(p1)).Scale(0.5)
	centre = p0.Add(p1).Add(p2).Add(p3).Scale(0.25)
	return sf, centre
}

func (m *Mesh) updateGeometry() error {
	nc := len(m.Cells)
	m.Centres = make([]field.Vec3, nc)
	m.Volumes = make([]float64, nc)

	for c, cell := range m.Cells {
		var sum field.Vec3
		for _, p := range cell {
			sum = sum.Add(m.Points[p])
		}
		m.Centres[c] = sum.Scale(1.0 / 8)
	}

	// V = 1/3 sum(Cf . Sf) over the closed cell surface
	for i := range m.Faces {
		f := &m.Faces[i]
		f.Sf, f.Centre = quadGeometry(m.Points, f.Points)
		m.Volumes[f.Owner] += f.Centre.Dot(f.Sf) / 3
		m.Volumes[f.Neighbour] -= f.Centre.Dot(f.Sf) / 3

		n := f.Sf.Scale(1 / f.Sf.Mag())
		dOwn := n.Dot(f.Centre.Sub(m.Centres[f.Owner]))
		dNei := n.Dot(m.Centres[f.Neighbour].Sub(f.Centre))
		f.Weight = dNei / (dOwn + dNei)
		f.DeltaCoeff = 1 / math.Max(dOwn+dNei, 1e-300)
	}
	for p := range m.Patches {
		for i := range m.Patches[p].Faces {
			f := &m.Patches[p].Faces[i]
			f.Sf, f.Centre = quadGeometry(m.Points, f.Points)
			m.Volumes[f.Owner] += f.Centre.Dot(f.Sf) / 3

			n := f.Sf.Scale(1 / f.Sf.Mag())
			f.DeltaCoeff = 1 / math.Max(n.Dot(f.Centre.Sub(m.Centres[f.Owner])), 1e-300)
		}
	}

	for c, v := range m.Volumes {
		if !(v > 0) {
			return fmt.Errorf("mesh: cell %d has non-positive volume %g: %w", c, v, dynamo.ErrInvalidState)
		}
	}
	return nil
}

// Validate checks addressing and that every cell surface is closed.
func (m *Mesh) Validate() error {
	nc := len(m.Cells)
	closure := make([]field.Vec3, nc)
	for i, f := range m.Faces {
		if f.Owner < 0 || f.Owner >= nc || f.Neighbour < 0 || f.Neighbour >= nc {
			return fmt.Errorf("mesh: face %d addresses cells %d/%d of %d: %w", i, f.Owner, f.Neighbour, nc, dynamo.ErrDimensionMismatch)
		}
		if f.Owner >= f.Neighbour {
			return fmt.Errorf("mesh: face %d owner %d not below neighbour %d: %w", i, f.Owner, f.Neighbour, dynamo.ErrInvalidState)
		}
		closure[f.Owner] = closure[f.Owner].Add(f.Sf)
		closure[f.Neighbour] = closure[f.Neighbour].Sub(f.Sf)
	}
	for _, p := range m.Patches {
		for i, f := range p.Faces {
			if f.Owner < 0 || f.Owner >= nc {
				return fmt.Errorf("mesh: patch %s face %d owner %d of %d: %w", p.Name, i, f.Owner, nc, dynamo.ErrDimensionMismatch)
			}
			closure[f.Owner] = closure[f.Owner].Add(f.Sf)
		}
	}
	for c, s := range closure {
		scale := math.Cbrt(m.Volumes[c])
		if s.Mag() > 1e-9*scale*scale {
			return fmt.Errorf("mesh: cell %d surface not closed (|sum Sf| = %g): %w", c, s.Mag(), dynamo.ErrInvalidState)
		}
	}
	return nil
}
