package turbulence

import (
	"testing"

	"github.com/san-kum/nutilda/internal/field"
	"github.com/san-kum/nutilda/internal/fvm"
	"github.com/san-kum/nutilda/internal/mesh"
	"github.com/stretchr/testify/require"
)

const testNu = 1e-5

// channelCase is a wall-bounded slab with walls at y = 0 and y = 2.
type channelCase struct {
	mesh *mesh.Mesh
	in   Inputs
}

func newChannel(t testing.TB, ny int, u func(x field.Vec3) field.Vec3) *channelCase {
	t.Helper()
	m, err := mesh.NewBox(mesh.BoxSpec{
		NX: 2, NY: ny, NZ: 1,
		Length: field.Vec3{1, 2, 0.5},
		Walls:  []string{mesh.YMin, mesh.YMax},
	})
	require.NoError(t, err)

	U := field.New[field.Vec3]("U", field.DimVelocity, m.Shape())
	for c, x := range m.Centres {
		U.Internal[c] = u(x)
	}
	for p, patch := range m.Patches {
		U.Boundary[p].Kind = field.FixedValue
		for i, f := range patch.Faces {
			U.Boundary[p].Values[i] = u(f.Centre)
		}
	}

	return &channelCase{
		mesh: m,
		in: Inputs{
			Mesh:        m,
			U:           U,
			AlphaRhoPhi: fvm.FluxOf(m, U),
			Nu:          field.Uniform("nu", field.DimKinematicViscosity, m.Shape(), testNu),
			Dt:          0.5,
			TimeIndex:   1,
		},
	}
}

func still(field.Vec3) field.Vec3 { return field.Vec3{} }

func shear(x field.Vec3) field.Vec3 { return field.Vec3{x[1], 0, 0} }

// nuTilda returns a uniform field of value v. Walls are fixed at zero
// unless zeroGrad is set, in which case every patch is zero gradient.
func (c *channelCase) nuTilda(t testing.TB, v float64, zeroGrad bool) *field.Scalar {
	t.Helper()
	f := field.Uniform("nuTilda", field.DimKinematicViscosity, c.mesh.Shape(), v)
	kinds := make([]field.PatchKind, len(c.mesh.Patches))
	for i := range kinds {
		kinds[i] = field.ZeroGradient
	}
	f.SetKinds(kinds)
	if !zeroGrad {
		require.NoError(t, f.SetPatch(mesh.YMin, field.FixedValue, 0))
		require.NoError(t, f.SetPatch(mesh.YMax, field.FixedValue, 0))
	}
	return f
}
