package turbulence

import (
	"math"

	"github.com/san-kum/nutilda/internal/dynamo"
	"github.com/san-kum/nutilda/internal/field"
	"gonum.org/v1/gonum/unit"
)

// Cell-wise kernels. Every field function below evaluates one of these on
// each cell and boundary face; none of them read anything but arguments.

func (c Coeffs) fv1(chi float64) float64 {
	chi3 := chi * chi * chi
	return chi3 / (chi3 + c.Cv1*c.Cv1*c.Cv1)
}

func (c Coeffs) fv2(chi, fv1 float64) float64 {
	return 1 - chi/(1+chi*fv1)
}

func (c Coeffs) ft2(chi float64) float64 {
	if !c.Ft2 {
		return 0
	}
	return c.Ct3 * math.Exp(-c.Ct4*chi*chi)
}

func (c Coeffs) stilda(chi, fv1, nuTilda, omega, h, dTilda float64) float64 {
	kd := c.Kappa * dTilda
	s := omega*h + c.fv2(chi, fv1)*nuTilda/(kd*kd)
	if math.IsNaN(s) {
		return c.Cs * omega
	}
	return math.Max(s, c.Cs*omega)
}

func (c Coeffs) r(nur, stilda, dTilda float64) float64 {
	kd := c.Kappa * dTilda
	v := nur / (math.Max(stilda, small) * kd * kd)
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(v, rMax)
}

func (c Coeffs) fw(r float64) float64 {
	g := r + c.Cw2*(math.Pow(r, 6)-r)
	if !(g > 0) {
		return 0
	}
	cw36 := math.Pow(c.Cw3, 6)
	g6 := math.Pow(g, 6)
	// written so the result never rounds above (1+Cw3^6)^(1/6)
	return math.Pow(1+cw36, 1.0/6) * math.Pow(g6/(g6+cw36), 1.0/6)
}

// helicity returns 1 + Ch|Hn| with Hn the cosine between u and its
// vorticity.
func (c Coeffs) helicity(u field.Vec3, gradU field.Tensor3) float64 {
	if !c.Helicity {
		return 1
	}
	w := gradU.Curl()
	den := u.Mag() * w.Mag()
	if den < small {
		return 1
	}
	hn := math.Max(-1, math.Min(1, u.Dot(w)/den))
	return 1 + c.Ch*math.Abs(hn)
}

func omegaMag(gradU field.Tensor3) float64 {
	w := gradU.Skew()
	return math.Sqrt(2 * w.DoubleDot(w))
}

// cellwise evaluates fn over conforming scalar fields. Boundary faces get
// fn applied to the boundary values of the inputs.
func cellwise(name string, dims unit.Dimensions, fn func(v []float64) float64, in ...*field.Scalar) *field.Scalar {
	out := field.Map(in[0], name, dims, func(float64) float64 { return 0 })
	dynamo.ParallelFor(len(out.Internal), dynamo.MinChunk, func(start, end int) {
		v := make([]float64, len(in))
		for i := start; i < end; i++ {
			for k, f := range in {
				v[k] = f.Internal[i]
			}
			out.Internal[i] = fn(v)
		}
	})
	v := make([]float64, len(in))
	for p := range out.Boundary {
		for i := range out.Boundary[p].Values {
			for k, f := range in {
				v[k] = f.Boundary[p].Values[i]
			}
			out.Boundary[p].Values[i] = fn(v)
		}
	}
	return out
}

// Chi returns nuTilda/nu.
func (c Coeffs) Chi(nuTilda, nu *field.Scalar) *field.Scalar {
	return cellwise("chi", field.Dimless, func(v []float64) float64 { return v[0] / v[1] }, nuTilda, nu)
}

// Fv1 returns chi^3/(chi^3 + Cv1^3).
func (c Coeffs) Fv1(chi *field.Scalar) *field.Scalar {
	return field.Map(chi, "fv1", field.Dimless, c.fv1)
}

// Fv2 returns 1 - chi/(1 + chi fv1).
func (c Coeffs) Fv2(chi, fv1 *field.Scalar) *field.Scalar {
	return field.Zip(chi, fv1, "fv2", field.Dimless, c.fv2)
}

// Trip returns ft2 = Ct3 exp(-Ct4 chi^2), or zero when the trip term is off.
func (c Coeffs) Trip(chi *field.Scalar) *field.Scalar {
	return field.Map(chi, "ft2", field.Dimless, c.ft2)
}

// Omega returns the vorticity magnitude sqrt(2 W:W), W = skew(gradU).
func Omega(gradU *field.Tensor) *field.Scalar {
	return field.Map(gradU, "Omega", field.DimRate, omegaMag)
}

// HelicityFactor returns the production modifier h in [1, 1+Ch]. It is
// identically one when the correction is off.
func (c Coeffs) HelicityFactor(u *field.Vector, gradU *field.Tensor) *field.Scalar {
	return field.Zip(u, gradU, "h", field.Dimless, c.helicity)
}

// Stilda returns max(Omega h + fv2 nuTilda/(kappa dTilda)^2, Cs Omega).
func (c Coeffs) Stilda(chi, fv1, nuTilda, omega, h, dTilda *field.Scalar) *field.Scalar {
	return cellwise("Stilda", field.DimRate, func(v []float64) float64 {
		return c.stilda(v[0], v[1], v[2], v[3], v[4], v[5])
	}, chi, fv1, nuTilda, omega, h, dTilda)
}

// R returns min(nur/(Stilda (kappa dTilda)^2), 10). Boundary values are
// zero.
func (c Coeffs) R(nur, stilda, dTilda *field.Scalar) *field.Scalar {
	r := cellwise("r", field.Dimless, func(v []float64) float64 {
		return c.r(v[0], v[1], v[2])
	}, nur, stilda, dTilda)
	for p := range r.Boundary {
		for i := range r.Boundary[p].Values {
			r.Boundary[p].Values[i] = 0
		}
	}
	return r
}

// Fw returns the wall destruction function of r.
func (c Coeffs) Fw(r *field.Scalar) *field.Scalar {
	return field.Map(r, "fw", field.Dimless, c.fw)
}
