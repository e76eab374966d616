package turbulence

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCw1IsDerived(t *testing.T) {
	c := DefaultCoeffs()
	want := c.Cb1/(c.Kappa*c.Kappa) + (1+c.Cb2)/c.SigmaNut
	assert.Equal(t, want, c.Cw1())

	c.Cb1 *= 2
	assert.NotEqual(t, want, c.Cw1())
	assert.InDelta(t, 3.239, DefaultCoeffs().Cw1(), 1e-3)
}

func TestCoeffsSet(t *testing.T) {
	c := DefaultCoeffs()
	require.NoError(t, c.Set("Cb1", 0.2))
	assert.Equal(t, 0.2, c.Cb1)
	assert.Equal(t, c.Cb1/(c.Kappa*c.Kappa)+(1+c.Cb2)/c.SigmaNut, c.Cw1())

	require.NoError(t, c.Set("ck", 0.1))
	assert.Equal(t, 0.1, c.Ck)

	assert.ErrorIs(t, c.Set("Cw1", 1), dynamo.ErrUnknownComponent)
	assert.ErrorIs(t, c.Set("ft2", 1), dynamo.ErrUnknownComponent)
}

func TestFv1BoundedAndIncreasing(t *testing.T) {
	c := DefaultCoeffs()
	prev := -1.0
	for chi := 0.0; chi < 1000; chi += 0.25 {
		f := c.fv1(chi)
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
		require.GreaterOrEqual(t, f, prev, "fv1 decreased at chi=%g", chi)
		prev = f
	}
	assert.InDelta(t, 0.5, c.fv1(c.Cv1), 1e-15)
}

func TestFv2NeverExceedsOne(t *testing.T) {
	c := DefaultCoeffs()
	for chi := 0.0; chi < 500; chi += 0.1 {
		assert.LessOrEqual(t, c.fv2(chi, c.fv1(chi)), 1.0)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		chi, fv1 := 100*rng.Float64(), rng.Float64()*0.999
		assert.LessOrEqual(t, c.fv2(chi, fv1), 1.0)
	}
}

func TestFt2Switch(t *testing.T) {
	c := DefaultCoeffs()
	assert.Zero(t, c.ft2(0.5))

	c.Ft2 = true
	assert.Equal(t, c.Ct3, c.ft2(0))
	assert.InDelta(t, c.Ct3*math.Exp(-c.Ct4), c.ft2(1), 1e-15)
}

func TestStildaClippedAtCsOmega(t *testing.T) {
	c := DefaultCoeffs()
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 5000; i++ {
		chi := 10 * rng.Float64()
		fv1 := c.fv1(chi)
		nuTilda := chi * 1e-5
		omega := 100 * rng.Float64()
		h := 1 + rng.Float64()
		d := 1e-6 + rng.Float64()
		assert.GreaterOrEqual(t, c.stilda(chi, fv1, nuTilda, omega, h, d), c.Cs*omega)
	}

	// fv2 < 0 and a tiny dTilda drive the unclipped value far below zero
	chi := 3.0
	unclipped := 1.0 + c.fv2(chi, c.fv1(chi))*3e-5/math.Pow(c.Kappa*1e-4, 2)
	require.Less(t, unclipped, 0.0)
	assert.Equal(t, c.Cs*1.0, c.stilda(chi, c.fv1(chi), 3e-5, 1, 1, 1e-4))

	assert.Equal(t, 0.0, c.stilda(chi, c.fv1(chi), 0, 0, 1, 0))
}

func TestRBounded(t *testing.T) {
	c := DefaultCoeffs()
	assert.Equal(t, rMax, c.r(1, 1e-30, 1e-6))
	assert.Equal(t, rMax, c.r(1, 0, 1))
	assert.Equal(t, 0.0, c.r(0, 0, 0))
	assert.InDelta(t, 1.0, c.r(c.Kappa*c.Kappa, 1, 1), 1e-15)
}

func TestFwBounded(t *testing.T) {
	c := DefaultCoeffs()
	upper := math.Pow(1+math.Pow(c.Cw3, 6), 1.0/6)
	assert.Zero(t, c.fw(0))
	assert.InDelta(t, 1.0, c.fw(1), 1e-12)
	assert.LessOrEqual(t, c.fw(rMax), upper)
	for r := 0.0; r <= rMax; r += 0.01 {
		fw := c.fw(r)
		require.GreaterOrEqual(t, fw, 0.0)
		require.LessOrEqual(t, fw, upper)
	}
}

func TestOmegaAndHelicityOfRotation(t *testing.T) {
	c := DefaultCoeffs()
	// solid-body rotation about z: Ux = -y, Uy = x
	var g field.Tensor3
	g[3*1+0] = -1
	g[3*0+1] = 1

	assert.InDelta(t, 2.0, omegaMag(g), 1e-15)
	assert.InDelta(t, 1+c.Ch, c.helicity(field.Vec3{0, 0, 3}, g), 1e-15)
	assert.InDelta(t, 1+c.Ch, c.helicity(field.Vec3{0, 0, -3}, g), 1e-15)
	assert.InDelta(t, 1.0, c.helicity(field.Vec3{1, 0, 0}, g), 1e-15)
	assert.Equal(t, 1.0, c.helicity(field.Vec3{}, g))

	c.Helicity = false
	assert.Equal(t, 1.0, c.helicity(field.Vec3{0, 0, 3}, g))
}

func TestHelicityWithinBounds(t *testing.T) {
	c := DefaultCoeffs()
	c.Ch = 0.7
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		var g field.Tensor3
		for k := range g {
			g[k] = rng.NormFloat64()
		}
		u := field.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		h := c.helicity(u, g)
		require.GreaterOrEqual(t, h, 1.0)
		require.LessOrEqual(t, h, 1+c.Ch)
	}
}

func testShape() field.Shape {
	return field.Shape{Cells: 5, Patches: []field.PatchShape{{Name: "wall", Owners: []int{0, 4}}}}
}

func TestAuxiliaryFunctionsAreDeterministic(t *testing.T) {
	c := DefaultCoeffs()
	c.Ft2 = true
	nu := field.Uniform("nu", field.DimKinematicViscosity, testShape(), 1e-5)
	nuTilda := field.New[float64]("nuTilda", field.DimKinematicViscosity, testShape())
	for i := range nuTilda.Internal {
		nuTilda.Internal[i] = float64(i) * 2e-5
	}

	eval := func() []*field.Scalar {
		chi := c.Chi(nuTilda, nu)
		fv1 := c.Fv1(chi)
		return []*field.Scalar{chi, fv1, c.Fv2(chi, fv1), c.Trip(chi)}
	}
	assert.Equal(t, eval(), eval())
}

func TestRBoundaryIsZero(t *testing.T) {
	c := DefaultCoeffs()
	nur := field.Uniform("nuTilda", field.DimKinematicViscosity, testShape(), 1e-4)
	s := field.Uniform("Stilda", field.DimRate, testShape(), 1.0)
	d := field.Uniform("dTilda", field.DimLength, testShape(), 0.01)

	r := c.R(nur, s, d)
	assert.Greater(t, r.Internal[0], 0.0)
	assert.Equal(t, []float64{0, 0}, r.Boundary[0].Values)
	assert.True(t, field.SameDims(r.Dims, field.Dimless))
}
